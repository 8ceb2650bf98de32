package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"UniversalInbox/internal/cli/bootstrap"
	"UniversalInbox/internal/cli/model"
	"UniversalInbox/internal/cli/state"
	"UniversalInbox/internal/config"
)

// closeTimeout: сколько ждём фоновые сохранения при выходе.
const closeTimeout = 15 * time.Second

var (
	ErrItemNotFound = errors.New("item not found")
	ErrBinNotFound  = errors.New("bin not found")
	ErrAmbiguous    = errors.New("ambiguous id prefix")
)

// withStore открывает хранилище, дожидается начальной загрузки, выполняет fn
// и закрывает хранилище (дожидаясь фоновых сохранений и сбрасывая черновик).
func withStore(ctx context.Context, cfg *config.Config, fn func(*state.Store) error) (err error) {
	s, done, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if cerr := done(cctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := s.WaitLoaded(ctx); err != nil {
		return err
	}
	return fn(s)
}

// resolveItem ищет запись по полному id или по однозначному префиксу.
func resolveItem(s *state.Store, ref string) (model.Item, error) {
	if it, ok := s.Item(ref); ok {
		return it, nil
	}
	var found []model.Item
	for _, it := range s.Items() {
		if strings.HasPrefix(it.ID, ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return model.Item{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
	}
}

// resolveBin ищет bin по id, имени (без учёта регистра) или однозначному префиксу id.
func resolveBin(s *state.Store, ref string) (model.Bin, error) {
	bins := s.Bins()
	for _, b := range bins {
		if b.ID == ref || strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	var found []model.Bin
	for _, b := range bins {
		if strings.HasPrefix(b.ID, ref) {
			found = append(found, b)
		}
	}
	switch len(found) {
	case 0:
		return model.Bin{}, fmt.Errorf("%w: %s", ErrBinNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return model.Bin{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
	}
}

// preview: первая строка текста, укороченная до n символов.
func preview(text string, n int) string {
	line, _, _ := strings.Cut(text, "\n")
	r := []rune(line)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	if len(line) < len(text) {
		return line + " …"
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printItems(items []model.Item, binNames map[string]string) {
	for _, it := range items {
		where := string(it.Status)
		if it.BinID != nil {
			name, ok := binNames[*it.BinID]
			if !ok {
				name = shortID(*it.BinID)
			}
			where += "/" + name
		}
		fmt.Fprintf(Out, "- %s  %s  [%s]  %s\n",
			shortID(it.ID), it.CreatedAt.Local().Format("2006-01-02 15:04"), where, preview(it.RawText, 60))
	}
}

func binNames(bins []model.Bin) map[string]string {
	m := make(map[string]string, len(bins))
	for _, b := range bins {
		m[b.ID] = b.Name
	}
	return m
}
