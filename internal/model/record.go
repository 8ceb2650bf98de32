package model

import "time"

// Статусы записи на сервере совпадают с клиентскими.
const (
	StatusInbox     = "inbox"
	StatusProcessed = "processed"
	StatusArchived  = "archived"
)

// ValidStatus сообщает, известен ли статус.
func ValidStatus(s string) bool {
	switch s {
	case StatusInbox, StatusProcessed, StatusArchived:
		return true
	}
	return false
}

// ItemRecord: серверная запись захваченной заметки.
type ItemRecord struct {
	ID      string  `gorm:"primaryKey;type:uuid" json:"id"`
	RawText string  `gorm:"not null" json:"rawText"`
	Status  string  `gorm:"not null;default:'inbox';index" json:"status"`
	BinID   *string `gorm:"type:uuid;index" json:"binId,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// BinRecord: серверная категория.
type BinRecord struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
