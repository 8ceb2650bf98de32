package redis

import (
	"context"
	"testing"
	"time"

	"UniversalInbox/internal/cli/model"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "inbox:item:abc", itemKey("abc"))
	assert.Equal(t, "inbox:bin:abc", binKey("abc"))
}

func TestItemScore_OrdersByCreation(t *testing.T) {
	older := model.Item{CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := model.Item{CreatedAt: older.CreatedAt.Add(time.Second)}
	assert.Less(t, itemScore(older), itemScore(newer))
}

func TestDecodeItem_Normalizes(t *testing.T) {
	it, err := decodeItem([]byte(`{"id":"nope","rawText":"x","status":"bogus","binId":"bad","createdAt":"2024-05-01T12:00:00+02:00"}`))
	require.NoError(t, err)
	assert.Len(t, it.ID, 36)
	assert.Equal(t, model.StatusInbox, it.Status)
	assert.Nil(t, it.BinID)
	assert.Equal(t, time.UTC, it.CreatedAt.Location())
	assert.Equal(t, 10, it.CreatedAt.Hour())
}

func TestDecodeItem_KeepsValid(t *testing.T) {
	const id = "0b6f3c8e-3f8a-4c34-9a55-3c3a6e1d7c11"
	const bin = "6a4b2d55-0d8e-4c44-8c3d-2b8f0e6f4a90"
	it, err := decodeItem([]byte(`{"id":"` + id + `","rawText":"x","status":"archived","binId":"` + bin + `"}`))
	require.NoError(t, err)
	assert.Equal(t, id, it.ID)
	assert.Equal(t, model.StatusArchived, it.Status)
	require.NotNil(t, it.BinID)
	assert.Equal(t, bin, *it.BinID)
}

func TestDecodeItem_Garbage(t *testing.T) {
	_, err := decodeItem([]byte("{"))
	assert.Error(t, err)
}

func TestOpen_BadURL(t *testing.T) {
	_, err := Open(context.Background(), "not-a-url://")
	assert.Error(t, err)
}

func TestUnreachableServer_ReturnsErrors(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := New(client)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := s.FetchItems(ctx)
	assert.Error(t, err)
	_, err = s.FetchBins(ctx)
	assert.Error(t, err)
	assert.Error(t, s.SaveItem(ctx, model.NewItem("x", time.Now())))
	assert.Error(t, s.SaveBin(ctx, model.NewBin("Tasks", "")))
	assert.Error(t, s.DeleteItem(ctx, "id"))
}

func TestEmptyIDs_Rejected(t *testing.T) {
	s := New(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"}))
	defer s.Close()
	ctx := context.Background()
	assert.Error(t, s.SaveItem(ctx, model.Item{}))
	assert.Error(t, s.SaveBin(ctx, model.Bin{}))
	assert.Error(t, s.DeleteItem(ctx, ""))
}

func newTestStore(t *testing.T) (*RecordStoreRedis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSaveItem_WritesRecordAndIndex(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	it := model.NewItem("купить молоко", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveItem(ctx, it))

	assert.True(t, mr.Exists(itemKey(it.ID)))
	score, err := mr.ZScore(itemsIndexKey, it.ID)
	require.NoError(t, err)
	assert.Equal(t, itemScore(it), score)

	// повторное сохранение перезаписывает запись, индекс не растёт
	it.Status = model.StatusArchived
	require.NoError(t, s.SaveItem(ctx, it))
	members, err := mr.ZMembers(itemsIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{it.ID}, members)

	got, err := s.FetchItems(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.StatusArchived, got[0].Status)
	assert.Equal(t, "купить молоко", got[0].RawText)
}

func TestFetchItems_NewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	older := model.NewItem("first", base)
	newer := model.NewItem("second", base.Add(time.Hour))
	// порядок сохранения не влияет на порядок выдачи
	require.NoError(t, s.SaveItem(ctx, newer))
	require.NoError(t, s.SaveItem(ctx, older))

	got, err := s.FetchItems(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.True(t, got[0].CreatedAt.Equal(newer.CreatedAt))
}

func TestFetchItems_Empty(t *testing.T) {
	s, _ := newTestStore(t)
	items, err := s.FetchItems(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	bins, err := s.FetchBins(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, bins)
	assert.Empty(t, bins)
}

func TestFetchItems_SkipsIndexEntryWithoutRecord(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	kept := model.NewItem("kept", base)
	lost := model.NewItem("lost", base.Add(time.Minute))
	require.NoError(t, s.SaveItem(ctx, kept))
	require.NoError(t, s.SaveItem(ctx, lost))

	mr.Del(itemKey(lost.ID))

	got, err := s.FetchItems(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, kept.ID, got[0].ID)
}

func TestDeleteItem_RemovesRecordAndIndex(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	it := model.NewItem("x", time.Now())
	require.NoError(t, s.SaveItem(ctx, it))

	require.NoError(t, s.DeleteItem(ctx, it.ID))
	assert.False(t, mr.Exists(itemKey(it.ID)))
	assert.False(t, mr.Exists(itemsIndexKey))

	// отсутствующая запись не ошибка
	require.NoError(t, s.DeleteItem(ctx, it.ID))

	got, err := s.FetchItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveBin_FetchBinsSortedByName(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	tasks := model.NewBin("Tasks", "Actionable items")
	ideas := model.NewBin("Ideas", "Thoughts and concepts")
	require.NoError(t, s.SaveBin(ctx, tasks))
	require.NoError(t, s.SaveBin(ctx, ideas))

	assert.True(t, mr.Exists(binKey(tasks.ID)))
	ok, err := mr.SIsMember(binsIndexKey, ideas.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// повторное сохранение обновляет описание
	tasks.Description = "Todo"
	require.NoError(t, s.SaveBin(ctx, tasks))

	got, err := s.FetchBins(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ideas", got[0].Name)
	assert.Equal(t, "Tasks", got[1].Name)
	assert.Equal(t, "Todo", got[1].Description)
	assert.Equal(t, tasks.ID, got[1].ID)
}

func TestOpen_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveBin(context.Background(), model.NewBin("Tasks", "")))
	bins, err := s.FetchBins(context.Background())
	require.NoError(t, err)
	assert.Len(t, bins, 1)
}
