// Package state содержит хранилище состояния клиента: записи, bins, черновик и API-ключ.
//
// Все изменения применяются к памяти сразу и под одним мьютексом; сохранение
// (локальное или удалённое) выполняется в фоне и результат вызывающему не возвращается.
package state

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"UniversalInbox/internal/cli/model"
	"UniversalInbox/internal/cli/repo"
	"UniversalInbox/internal/cli/validate"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Deps: зависимости хранилища. Local обязателен для черновика; Remote и Secrets опциональны.
// Если Remote не задан, записи и bins хранятся в Local под ключами items_v1/bins_v1.
type Deps struct {
	Local     repo.KVStore
	Remote    repo.RemoteStore
	Secrets   repo.SecretStore
	Logger    *zap.SugaredLogger
	Validator validate.Validator
	Now       func() time.Time
}

// Dirty: флаги несохранённых изменений.
// Items и Bins решают, перезаписывает ли Flush коллекции. Draft только
// информирует: черновик Flush пишет всегда, и время его записи служит
// меткой последнего сброса.
type Dirty struct {
	Items bool
	Bins  bool
	Draft bool
}

// Store владеет состоянием в памяти. Методы безопасны для конкурентного вызова.
type Store struct {
	mu         sync.Mutex
	items      []model.Item
	bins       []model.Bin
	draft      string
	credential string
	dirty      Dirty

	local     repo.KVStore
	remote    repo.RemoteStore
	secrets   repo.SecretStore
	log       *zap.SugaredLogger
	validator validate.Validator
	now       func() time.Time

	bg     context.Context
	tasks  sync.WaitGroup
	loaded chan struct{}
}

// New создаёт хранилище: синхронно читает черновик и запускает фоновую загрузку
// записей, bins и API-ключа. Фоновые задачи не отменяются вместе с ctx.
func New(ctx context.Context, deps Deps) *Store {
	s := &Store{
		local:     deps.Local,
		remote:    deps.Remote,
		secrets:   deps.Secrets,
		log:       deps.Logger,
		validator: deps.Validator,
		now:       deps.Now,
		bg:        context.WithoutCancel(ctx),
		loaded:    make(chan struct{}),
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.validator.MaxLength <= 0 {
		s.validator = validate.New(0)
	}

	s.loadDraft(ctx)

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		defer close(s.loaded)
		if err := s.Reload(s.bg); err != nil {
			s.log.Errorw("initial load failed", "error", err)
		}
		s.loadCredential(s.bg)
	}()
	return s
}

// Loaded закрывается после завершения начальной загрузки.
func (s *Store) Loaded() <-chan struct{} {
	return s.loaded
}

// WaitLoaded блокируется до завершения начальной загрузки или отмены ctx.
func (s *Store) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait дожидается завершения всех фоновых задач (загрузки и сохранений).
func (s *Store) Wait() {
	s.tasks.Wait()
}

// Close дожидается фоновых задач и сбрасывает несохранённое локальное состояние.
func (s *Store) Close(ctx context.Context) error {
	s.Wait()
	return s.Flush(ctx)
}

// localCollections сообщает, что записи и bins хранятся локально.
func (s *Store) localCollections() bool {
	return s.remote == nil && s.local != nil
}

func (s *Store) loadDraft(ctx context.Context) {
	if s.local == nil {
		return
	}
	var draft string
	if !s.readJSON(ctx, repo.KeyDraft, &draft) {
		return
	}
	s.mu.Lock()
	s.draft = draft
	s.mu.Unlock()
}

// loadCredential читает ключ без пометки об изменении: загрузка не должна вызывать запись.
func (s *Store) loadCredential(ctx context.Context) {
	if s.secrets == nil {
		return
	}
	b, ok, err := s.secrets.Get(ctx, repo.APIKeySecret)
	if err != nil {
		s.log.Warnw("failed to read credential", "error", err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	s.credential = string(b)
	s.mu.Unlock()
}

// Reload заново загружает записи и bins и целиком заменяет ими состояние в памяти.
// При ошибке удалённой загрузки состояние не меняется и bins не засеваются.
func (s *Store) Reload(ctx context.Context) error {
	items, bins, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.bins = bins
	s.dirty.Items, s.dirty.Bins = false, false
	var seeded []model.Bin
	if len(s.bins) == 0 {
		seeded = model.DefaultBins()
		s.bins = append([]model.Bin(nil), seeded...)
		if s.localCollections() {
			s.dirty.Bins = true
		}
		s.log.Infow("seeded default bins", "count", len(seeded))
	}
	s.mu.Unlock()

	if s.remote != nil {
		for _, b := range seeded {
			s.pushBin(b)
		}
	}
	return nil
}

// fetch загружает обе коллекции параллельно; результат применяется только после обеих.
func (s *Store) fetch(ctx context.Context) ([]model.Item, []model.Bin, error) {
	var (
		items []model.Item
		bins  []model.Bin
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.remote != nil {
		g.Go(func() error {
			var err error
			items, err = s.remote.FetchItems(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			bins, err = s.remote.FetchBins(gctx)
			return err
		})
	} else if s.local != nil {
		g.Go(func() error {
			s.readJSON(gctx, repo.KeyItems, &items)
			return nil
		})
		g.Go(func() error {
			s.readJSON(gctx, repo.KeyBins, &bins)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, bins, nil
}

// readJSON читает и декодирует ключ. Ошибки чтения и декодирования трактуются как отсутствие.
func (s *Store) readJSON(ctx context.Context, key string, dst any) bool {
	b, ok, err := s.local.Get(ctx, key)
	if err != nil {
		s.log.Warnw("failed to read local key", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.log.Warnw("failed to decode local key, using empty value", "key", key, "error", err)
		return false
	}
	return true
}

// Capture создаёт запись во входящих из text и ставит её в начало списка.
func (s *Store) Capture(text string) (model.Item, error) {
	clean, err := s.validator.Sanitize(text)
	if err != nil {
		return model.Item{}, err
	}

	s.mu.Lock()
	item := model.NewItem(clean, s.now())
	s.items = append([]model.Item{item}, s.items...)
	s.draft = ""
	s.dirty.Draft = true
	if s.localCollections() {
		s.dirty.Items = true
	}
	s.mu.Unlock()

	s.pushItem(item)
	return item.Clone(), nil
}

// Move помечает запись обработанной и относит её в bin. Неизвестный id игнорируется.
// Существование bin не проверяется.
func (s *Store) Move(itemID, binID string) {
	s.mu.Lock()
	idx := s.indexOf(itemID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	bin := binID
	s.items[idx].BinID = &bin
	s.items[idx].Status = model.StatusProcessed
	updated := s.items[idx].Clone()
	if s.localCollections() {
		s.dirty.Items = true
	}
	s.mu.Unlock()

	s.pushItem(updated)
}

// Delete удаляет запись из памяти и в фоне из хранилища. Неизвестный id игнорируется.
func (s *Store) Delete(itemID string) {
	s.mu.Lock()
	idx := s.indexOf(itemID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	if s.localCollections() {
		s.dirty.Items = true
	}
	s.mu.Unlock()

	if s.remote != nil {
		s.spawn("delete item", func(ctx context.Context) error {
			return s.remote.DeleteItem(ctx, itemID)
		})
	}
}

// SetDraft заменяет черновик.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == text {
		return
	}
	s.draft = text
	s.dirty.Draft = true
}

// SetCredential проверяет ключ и сразу записывает его в хранилище секретов.
// Пустое значение удаляет сохранённый ключ.
func (s *Store) SetCredential(ctx context.Context, value string) error {
	clean, err := validate.Credential(value)
	if err != nil {
		return ErrInvalidCredential
	}
	if s.secrets != nil {
		if clean == "" {
			err = s.secrets.Delete(ctx, repo.APIKeySecret)
		} else {
			err = s.secrets.Set(ctx, repo.APIKeySecret, []byte(clean))
		}
		if err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.credential = clean
	s.mu.Unlock()
	return nil
}

// Flush записывает черновик и изменённые коллекции в локальное хранилище.
// Повторный вызов без изменений коллекции не перезаписывает.
func (s *Store) Flush(ctx context.Context) error {
	if s.local == nil {
		return nil
	}

	s.mu.Lock()
	draft := s.draft
	dirty := s.dirty
	var items []model.Item
	var bins []model.Bin
	if dirty.Items {
		items = cloneItems(s.items)
	}
	if dirty.Bins {
		bins = append([]model.Bin{}, s.bins...)
	}
	s.mu.Unlock()

	if err := s.writeJSON(ctx, repo.KeyDraft, draft); err != nil {
		return err
	}
	s.clear(func(d *Dirty) { d.Draft = false }, func() bool { return s.draft == draft })

	if dirty.Items && s.localCollections() {
		if items == nil {
			items = []model.Item{}
		}
		if err := s.writeJSON(ctx, repo.KeyItems, items); err != nil {
			return err
		}
		s.clear(func(d *Dirty) { d.Items = false }, func() bool { return sameItems(s.items, items) })
	}
	if dirty.Bins && s.localCollections() {
		if err := s.writeJSON(ctx, repo.KeyBins, bins); err != nil {
			return err
		}
		s.clear(func(d *Dirty) { d.Bins = false }, func() bool { return len(s.bins) == len(bins) })
	}
	return nil
}

// clear сбрасывает флаг, только если состояние не изменилось после снятия снимка.
func (s *Store) clear(reset func(*Dirty), unchanged func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unchanged() {
		reset(&s.dirty)
	}
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.local.Set(ctx, key, b); err != nil {
		s.log.Errorw("failed to write local key", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *Store) pushItem(item model.Item) {
	if s.remote == nil {
		return
	}
	s.spawn("save item", func(ctx context.Context) error {
		return s.remote.SaveItem(ctx, item)
	})
}

func (s *Store) pushBin(bin model.Bin) {
	s.spawn("save bin", func(ctx context.Context) error {
		return s.remote.SaveBin(ctx, bin)
	})
}

// spawn запускает фоновую задачу сохранения. Ошибка только логируется.
func (s *Store) spawn(op string, fn func(ctx context.Context) error) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		if err := fn(s.bg); err != nil {
			s.log.Warnw("background sync failed", "op", op, "error", err)
		}
	}()
}

// indexOf вызывается под s.mu.
func (s *Store) indexOf(itemID string) int {
	for i := range s.items {
		if s.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Items возвращает копию всех записей (сначала новые).
func (s *Store) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// InboxItems возвращает необработанные записи.
func (s *Store) InboxItems() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		if it.Status == model.StatusInbox {
			res = append(res, it.Clone())
		}
	}
	return res
}

// ItemsInBin возвращает записи, отнесённые в bin.
func (s *Store) ItemsInBin(binID string) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.Item
	for _, it := range s.items {
		if it.InBin(binID) {
			res = append(res, it.Clone())
		}
	}
	return res
}

// Item возвращает запись по id.
func (s *Store) Item(itemID string) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(itemID); idx >= 0 {
		return s.items[idx].Clone(), true
	}
	return model.Item{}, false
}

// Bins возвращает копию bins.
func (s *Store) Bins() []model.Bin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Bin{}, s.bins...)
}

// Draft возвращает текущий черновик.
func (s *Store) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Credential возвращает API-ключ из памяти.
func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// DirtyFlags возвращает текущие флаги изменений.
func (s *Store) DirtyFlags() Dirty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func cloneItems(src []model.Item) []model.Item {
	res := make([]model.Item, len(src))
	for i := range src {
		res[i] = src[i].Clone()
	}
	return res
}

// sameItems сравнивает списки по id и статусу: этого достаточно, чтобы заметить
// изменения, сделанные между снимком и записью.
func sameItems(a, b []model.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Status != b[i].Status || !sameBin(a[i].BinID, b[i].BinID) {
			return false
		}
	}
	return true
}

func sameBin(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
