package repo

import (
	"context"

	"UniversalInbox/internal/cli/model"
)

// RemoteStore: порт удалённого хранилища записей (item/bin).
// Каждый вызов независим и может завершиться ошибкой; атомарности между вызовами нет.
type RemoteStore interface {
	// FetchItems возвращает записи, отсортированные по дате создания (сначала новые).
	FetchItems(ctx context.Context) ([]model.Item, error)

	// FetchBins возвращает все bins в произвольном порядке.
	FetchBins(ctx context.Context) ([]model.Bin, error)

	SaveItem(ctx context.Context, item model.Item) error
	SaveBin(ctx context.Context, bin model.Bin) error
	DeleteItem(ctx context.Context, id string) error
}
