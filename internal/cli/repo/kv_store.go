package repo

import (
	"context"
	"errors"
	"time"
)

// Ключи локального хранилища. Суффикс _v1: версия формата, при смене формата
// заводится новый ключ, старый не переиспользуется.
const (
	KeyItems = "items_v1"
	KeyBins  = "bins_v1"
	KeyDraft = "draftText_v1"
)

// ErrNotFound: значение по ключу отсутствует.
var ErrNotFound = errors.New("not found")

// KVStore описывает локальное key-value хранилище для черновика и коллекций.
type KVStore interface {
	// Get возвращает значение и признак наличия. Отсутствие ключа ошибкой не считается.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set перезаписывает значение по ключу.
	Set(ctx context.Context, key string, value []byte) error
}

// UpdateTracker: хранилище умеет сообщить время последней записи ключа.
type UpdateTracker interface {
	// UpdatedAt возвращает ErrNotFound, если ключ ещё не записывался.
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
