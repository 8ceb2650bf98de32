package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"UniversalInbox/internal/cli/model"
	"UniversalInbox/internal/cli/repo"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Раскладка ключей:
//
//	inbox:item:<id>  JSON записи
//	inbox:bin:<id>   JSON bin
//	inbox:items      sorted set id записей, score = createdAt в unix-наносекундах
//	inbox:bins       set id bins
const (
	itemsIndexKey = "inbox:items"
	binsIndexKey  = "inbox:bins"
	itemKeyPrefix = "inbox:item:"
	binKeyPrefix  = "inbox:bin:"
)

func itemKey(id string) string { return itemKeyPrefix + id }
func binKey(id string) string  { return binKeyPrefix + id }

// RecordStoreRedis хранит записи и bins в Redis.
type RecordStoreRedis struct {
	client *goredis.Client
}

var _ repo.RemoteStore = (*RecordStoreRedis)(nil)

// New оборачивает готовый клиент.
func New(client *goredis.Client) *RecordStoreRedis {
	return &RecordStoreRedis{client: client}
}

// Open разбирает redis:// URL, подключается и проверяет соединение.
func Open(ctx context.Context, url string) (*RecordStoreRedis, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client), nil
}

func (s *RecordStoreRedis) Close() error {
	return s.client.Close()
}

// FetchItems возвращает записи от новых к старым.
func (s *RecordStoreRedis) FetchItems(ctx context.Context) ([]model.Item, error) {
	ids, err := s.client.ZRevRange(ctx, itemsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read items index: %w", err)
	}
	if len(ids) == 0 {
		return []model.Item{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	items := make([]model.Item, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// индекс ссылается на удалённую запись
			continue
		}
		it, err := decodeItem([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode item %s: %w", ids[i], err)
		}
		items = append(items, it)
	}
	return items, nil
}

// FetchBins возвращает bins, упорядоченные по имени.
func (s *RecordStoreRedis) FetchBins(ctx context.Context) ([]model.Bin, error) {
	ids, err := s.client.SMembers(ctx, binsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read bins index: %w", err)
	}
	if len(ids) == 0 {
		return []model.Bin{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = binKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read bins: %w", err)
	}

	bins := make([]model.Bin, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var b model.Bin
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("decode bin %s: %w", ids[i], err)
		}
		if _, err := uuid.Parse(b.ID); err != nil {
			b.ID = uuid.NewString()
		}
		bins = append(bins, b)
	}
	sort.SliceStable(bins, func(i, j int) bool { return bins[i].Name < bins[j].Name })
	return bins, nil
}

// SaveItem пишет запись и обновляет индекс одной транзакцией.
func (s *RecordStoreRedis) SaveItem(ctx context.Context, item model.Item) error {
	if item.ID == "" {
		return errors.New("empty item id")
	}
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, itemKey(item.ID), b, 0)
		p.ZAdd(ctx, itemsIndexKey, goredis.Z{Score: itemScore(item), Member: item.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save item %s: %w", item.ID, err)
	}
	return nil
}

func (s *RecordStoreRedis) SaveBin(ctx context.Context, bin model.Bin) error {
	if bin.ID == "" {
		return errors.New("empty bin id")
	}
	b, err := json.Marshal(bin)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, binKey(bin.ID), b, 0)
		p.SAdd(ctx, binsIndexKey, bin.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save bin %s: %w", bin.ID, err)
	}
	return nil
}

// DeleteItem удаляет запись; отсутствие записи не ошибка.
func (s *RecordStoreRedis) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("empty item id")
	}
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, itemKey(id))
		p.ZRem(ctx, itemsIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

func itemScore(it model.Item) float64 {
	return float64(it.CreatedAt.UnixNano())
}

func decodeItem(raw []byte) (model.Item, error) {
	var it model.Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return model.Item{}, err
	}
	if _, err := uuid.Parse(it.ID); err != nil {
		it.ID = uuid.NewString()
	}
	if !it.Status.Valid() {
		it.Status = model.StatusInbox
	}
	if it.BinID != nil {
		if _, err := uuid.Parse(*it.BinID); err != nil {
			it.BinID = nil
		}
	}
	it.CreatedAt = it.CreatedAt.UTC()
	return it, nil
}
