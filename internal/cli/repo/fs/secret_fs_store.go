package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"UniversalInbox/internal/cli/crypto"
	"UniversalInbox/internal/cli/repo"
)

// SecretFSStore хранит секреты: файл на пару service/account, права 0600,
// содержимое зашифровано ключом каталога.
type SecretFSStore struct {
	dir    string
	sealer *crypto.Sealer
}

var _ repo.SecretStore = (*SecretFSStore)(nil)

// OpenSecrets открывает хранилище секретов в dir (пустой dir: каталог приложения).
func OpenSecrets(dir string) (*SecretFSStore, error) {
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
	return &SecretFSStore{dir: filepath.Join(dir, "secrets"), sealer: sealer}, nil
}

func (s *SecretFSStore) path(key repo.SecretKey) (string, error) {
	if err := validName(key.Service); err != nil {
		return "", fmt.Errorf("service: %w", err)
	}
	if err := validName(key.Account); err != nil {
		return "", fmt.Errorf("account: %w", err)
	}
	return filepath.Join(s.dir, key.Service, key.Account), nil
}

func additional(key repo.SecretKey) []byte {
	return []byte(key.Service + "/" + key.Account)
}

// Get читает секрет.
func (s *SecretFSStore) Get(_ context.Context, key repo.SecretKey) ([]byte, bool, error) {
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
	plain, err := s.sealer.Open(b, additional(key))
	if err != nil {
		return nil, false, err
	}
	return plain, true, nil
}

// Set сохраняет секрет, заменяя предыдущее значение.
func (s *SecretFSStore) Set(_ context.Context, key repo.SecretKey, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	sealed, err := s.sealer.Seal(value, additional(key))
	if err != nil {
		return err
	}
	return writeFileAtomic(p, sealed)
}

// Delete удаляет секрет; отсутствие файла не считается ошибкой.
func (s *SecretFSStore) Delete(_ context.Context, key repo.SecretKey) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
