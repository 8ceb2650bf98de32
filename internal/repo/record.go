package repo

import (
	"UniversalInbox/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository: доступ к записям и bins.
type RecordRepository interface {
	// ListItems возвращает записи от новых к старым.
	ListItems(ctx context.Context) ([]model.ItemRecord, error)
	ListBins(ctx context.Context) ([]model.BinRecord, error)

	// UpsertItem вставляет или обновляет запись по ID; created_at остаётся от первой вставки.
	UpsertItem(ctx context.Context, it *model.ItemRecord) error
	UpsertBin(ctx context.Context, b *model.BinRecord) error

	// DeleteItem удаляет запись и сообщает, существовала ли она.
	DeleteItem(ctx context.Context, id string) (bool, error)
}

type recordRepo struct {
	db *gorm.DB
}

// NewRecordRepository создаёт реализацию репозитория на gorm.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) ListItems(ctx context.Context) ([]model.ItemRecord, error) {
	var items []model.ItemRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *recordRepo) ListBins(ctx context.Context) ([]model.BinRecord, error) {
	var bins []model.BinRecord
	if err := r.db.WithContext(ctx).Order("created_at").Order("id").Find(&bins).Error; err != nil {
		return nil, err
	}
	return bins, nil
}

func (r *recordRepo) UpsertItem(ctx context.Context, it *model.ItemRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"raw_text", "status", "bin_id", "updated_at"}),
	}).Create(it).Error
}

func (r *recordRepo) UpsertBin(ctx context.Context, b *model.BinRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(b).Error
}

func (r *recordRepo) DeleteItem(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ItemRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
