package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"UniversalInbox/internal/cli/model"
	"UniversalInbox/internal/cli/repo"

	"github.com/stretchr/testify/mock"
)

// memKV: локальное хранилище в памяти со счётчиком записей по ключам.
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes map[string]int
	getErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, writes: map[string]int{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.writes[key]++
	return nil
}

func (m *memKV) put(t *testing.T, key string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
}

func (m *memKV) writeCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}

var _ repo.KVStore = (*memKV)(nil)

// memRemote: удалённое хранилище в памяти. Хуки позволяют задержать или сломать вызовы.
type memRemote struct {
	mu      sync.Mutex
	items   map[string]model.Item
	bins    map[string]model.Bin
	saves   int
	deletes int
	binSave int

	fetchErr    error
	saveErr     error
	beforeSave  func(item model.Item)
	afterDelete func(id string)
}

func newMemRemote() *memRemote {
	return &memRemote{items: map[string]model.Item{}, bins: map[string]model.Bin{}}
}

func (r *memRemote) FetchItems(context.Context) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	res := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		res = append(res, it)
	}
	return res, nil
}

func (r *memRemote) FetchBins(context.Context) ([]model.Bin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	res := make([]model.Bin, 0, len(r.bins))
	for _, b := range r.bins {
		res = append(res, b)
	}
	return res, nil
}

func (r *memRemote) SaveItem(_ context.Context, item model.Item) error {
	if r.beforeSave != nil {
		r.beforeSave(item)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.items[item.ID] = item
	return nil
}

func (r *memRemote) SaveBin(_ context.Context, bin model.Bin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binSave++
	r.bins[bin.ID] = bin
	return nil
}

func (r *memRemote) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	r.deletes++
	delete(r.items, id)
	r.mu.Unlock()
	if r.afterDelete != nil {
		r.afterDelete(id)
	}
	return nil
}

func (r *memRemote) counts() (saves, deletes, binSaves int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves, r.deletes, r.binSave
}

func (r *memRemote) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok
}

var _ repo.RemoteStore = (*memRemote)(nil)

// mockSecrets: мок хранилища секретов на testify.
type mockSecrets struct{ mock.Mock }

func (m *mockSecrets) Get(ctx context.Context, key repo.SecretKey) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if v, ok := args.Get(0).([]byte); ok {
		return v, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *mockSecrets) Set(ctx context.Context, key repo.SecretKey, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockSecrets) Delete(ctx context.Context, key repo.SecretKey) error {
	return m.Called(ctx, key).Error(0)
}

var _ repo.SecretStore = (*mockSecrets)(nil)

var errBoom = errors.New("boom")
