package model

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus: состояние обработки записи во входящих.
type ItemStatus string

const (
	StatusInbox     ItemStatus = "inbox"
	StatusProcessed ItemStatus = "processed"
	StatusArchived  ItemStatus = "archived"
)

// Valid сообщает, является ли значение одним из известных статусов.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusInbox, StatusProcessed, StatusArchived:
		return true
	}
	return false
}

// Item: захваченная заметка. Формат JSON соответствует ключу items_v1.
type Item struct {
	ID        string     `json:"id"`
	RawText   string     `json:"rawText"`
	Status    ItemStatus `json:"status"`
	BinID     *string    `json:"binId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewItem создаёт запись во входящих с новым идентификатором.
func NewItem(text string, now time.Time) Item {
	return Item{
		ID:        uuid.NewString(),
		RawText:   text,
		Status:    StatusInbox,
		CreatedAt: now.UTC(),
	}
}

// InBin: запись разложена в указанный bin.
func (it Item) InBin(binID string) bool {
	return it.BinID != nil && *it.BinID == binID
}

// Clone возвращает копию, не разделяющую указатель BinID с оригиналом.
func (it Item) Clone() Item {
	if it.BinID != nil {
		id := *it.BinID
		it.BinID = &id
	}
	return it
}
