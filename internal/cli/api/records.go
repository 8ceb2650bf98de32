package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"UniversalInbox/internal/cli/model"
	"UniversalInbox/internal/cli/repo"

	"github.com/google/uuid"
)

// itemRecord/binRecord соответствуют JSON-контракту /api/records/*.
type itemRecord struct {
	ID        string    `json:"id"`
	RawText   string    `json:"rawText"`
	Status    string    `json:"status"`
	BinID     *string   `json:"binId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type binRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var _ repo.RemoteStore = (*Client)(nil)

// toItem восстанавливает запись из серверного представления.
// Некорректный статус трактуется как inbox, некорректный binId: как отсутствующий.
func (r itemRecord) toItem() model.Item {
	it := model.Item{
		ID:        r.ID,
		RawText:   r.RawText,
		Status:    model.ItemStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
	if _, err := uuid.Parse(it.ID); err != nil {
		it.ID = uuid.NewString()
	}
	if !it.Status.Valid() {
		it.Status = model.StatusInbox
	}
	if r.BinID != nil {
		if _, err := uuid.Parse(*r.BinID); err == nil {
			id := *r.BinID
			it.BinID = &id
		}
	}
	return it
}

func fromItem(it model.Item) itemRecord {
	return itemRecord{
		ID:        it.ID,
		RawText:   it.RawText,
		Status:    string(it.Status),
		BinID:     it.BinID,
		CreatedAt: it.CreatedAt,
	}
}

// FetchItems загружает все записи (сервер сортирует по created_at DESC).
func (c *Client) FetchItems(ctx context.Context) ([]model.Item, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/records/items", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	var recs []itemRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]model.Item, 0, len(recs))
	for _, r := range recs {
		items = append(items, r.toItem())
	}
	return items, nil
}

// FetchBins загружает все bins.
func (c *Client) FetchBins(ctx context.Context) ([]model.Bin, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/records/bins", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch bins: %w", err)
	}
	var recs []binRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("decode bins: %w", err)
	}
	bins := make([]model.Bin, 0, len(recs))
	for _, r := range recs {
		id := r.ID
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		bins = append(bins, model.Bin{ID: id, Name: r.Name, Description: r.Description})
	}
	return bins, nil
}

// SaveItem создаёт или обновляет запись на сервере.
func (c *Client) SaveItem(ctx context.Context, item model.Item) error {
	if item.ID == "" {
		return errors.New("empty item id")
	}
	_, err := c.do(ctx, http.MethodPut, "/api/records/items/"+url.PathEscape(item.ID), fromItem(item))
	if err != nil {
		return fmt.Errorf("save item %s: %w", item.ID, err)
	}
	c.log.Debugw("saved item", "id", item.ID)
	return nil
}

// SaveBin создаёт или обновляет bin на сервере.
func (c *Client) SaveBin(ctx context.Context, bin model.Bin) error {
	if bin.ID == "" {
		return errors.New("empty bin id")
	}
	rec := binRecord{ID: bin.ID, Name: bin.Name, Description: bin.Description}
	if _, err := c.do(ctx, http.MethodPut, "/api/records/bins/"+url.PathEscape(bin.ID), rec); err != nil {
		return fmt.Errorf("save bin %s: %w", bin.ID, err)
	}
	return nil
}

// DeleteItem удаляет запись на сервере. Отсутствующая запись ошибкой не считается.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("empty item id")
	}
	_, err := c.do(ctx, http.MethodDelete, "/api/records/items/"+url.PathEscape(id), nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	c.log.Debugw("deleted item", "id", id)
	return nil
}
