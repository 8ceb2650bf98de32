package service

import (
	"UniversalInbox/internal/events"
	"UniversalInbox/internal/model"
	"UniversalInbox/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidID: идентификатор не UUID.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidRecord: тело записи не проходит проверку.
	ErrInvalidRecord = errors.New("invalid record")
)

// ItemInput: данные записи, пришедшие от клиента.
type ItemInput struct {
	RawText   string
	Status    string
	BinID     *string
	CreatedAt time.Time
}

// BinInput: данные bin от клиента.
type BinInput struct {
	Name        string
	Description string
}

// RecordService хранит записи и рассылает уведомления об изменениях.
type RecordService struct {
	repo   repo.RecordRepository
	pub    events.Publisher
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewRecordService(r repo.RecordRepository, pub events.Publisher, logger *zap.SugaredLogger) *RecordService {
	if pub == nil {
		pub = events.NewNoopPublisher(logger)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RecordService{repo: r, pub: pub, logger: logger, now: time.Now}
}

func (s *RecordService) ListItems(ctx context.Context) ([]model.ItemRecord, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *RecordService) ListBins(ctx context.Context) ([]model.BinRecord, error) {
	bins, err := s.repo.ListBins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	return bins, nil
}

// SaveItem проверяет и сохраняет запись с идентификатором id.
func (s *RecordService) SaveItem(ctx context.Context, id string, in ItemInput) (*model.ItemRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.RawText) == "" {
		return nil, fmt.Errorf("%w: empty rawText", ErrInvalidRecord)
	}
	status := in.Status
	if status == "" {
		status = model.StatusInbox
	}
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, in.Status)
	}
	var binID *string
	if in.BinID != nil && *in.BinID != "" {
		if _, err := uuid.Parse(*in.BinID); err != nil {
			return nil, fmt.Errorf("%w: bad binId", ErrInvalidRecord)
		}
		b := *in.BinID
		binID = &b
	}

	rec := &model.ItemRecord{
		ID:        id,
		RawText:   in.RawText,
		Status:    status,
		BinID:     binID,
		CreatedAt: in.CreatedAt.UTC(),
	}
	if in.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	if err := s.repo.UpsertItem(ctx, rec); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	s.notify(ctx, events.KindItem, events.ActionSaved, id)
	return rec, nil
}

func (s *RecordService) SaveBin(ctx context.Context, id string, in BinInput) (*model.BinRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	rec := &model.BinRecord{ID: id, Name: in.Name, Description: in.Description}
	if err := s.repo.UpsertBin(ctx, rec); err != nil {
		return nil, fmt.Errorf("save bin: %w", err)
	}
	s.notify(ctx, events.KindBin, events.ActionSaved, id)
	return rec, nil
}

// DeleteItem удаляет запись; отсутствующая запись не ошибка и не порождает уведомления.
func (s *RecordService) DeleteItem(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	existed, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if existed {
		s.notify(ctx, events.KindItem, events.ActionDeleted, id)
	}
	return nil
}

// notify публикует изменение; ошибка публикации только логируется
func (s *RecordService) notify(ctx context.Context, kind, action, id string) {
	c := events.Change{Kind: kind, Action: action, ID: id, At: s.now().UTC()}
	if err := s.pub.Publish(ctx, c); err != nil {
		s.logger.Warnw("publish change failed", "kind", kind, "action", action, "id", id, "error", err)
	}
}
