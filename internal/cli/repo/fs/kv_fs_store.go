package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"UniversalInbox/internal/cli/crypto"
	"UniversalInbox/internal/cli/repo"
)

// KVFSStore: файловое key-value хранилище, один зашифрованный файл на ключ.
type KVFSStore struct {
	dir    string
	sealer *crypto.Sealer
}

var (
	_ repo.KVStore      = (*KVFSStore)(nil)
	_ repo.UpdateTracker = (*KVFSStore)(nil)
)

// OpenKV открывает хранилище в каталоге dir (пустой dir: каталог приложения по умолчанию).
// Ключ шифрования хранится рядом, в dir/key.bin.
func OpenKV(dir string) (*KVFSStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	key, err := crypto.LoadOrCreateKey(dir)
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, err
	}
	return &KVFSStore{dir: filepath.Join(dir, "state"), sealer: sealer}, nil
}

func (s *KVFSStore) path(key string) (string, error) {
	if err := validName(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+".bin"), nil
}

// Get читает и расшифровывает значение по ключу.
func (s *KVFSStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	plain, err := s.sealer.Open(b, []byte(key))
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", key, err)
	}
	return plain, true, nil
}

// Set шифрует значение и атомарно заменяет файл ключа.
func (s *KVFSStore) Set(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	sealed, err := s.sealer.Seal(value, []byte(key))
	if err != nil {
		return err
	}
	return writeFileAtomic(p, sealed)
}

// UpdatedAt: время изменения файла ключа.
func (s *KVFSStore) UpdatedAt(_ context.Context, key string) (time.Time, error) {
	p, err := s.path(key)
	if err != nil {
		return time.Time{}, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, repo.ErrNotFound
		}
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}
