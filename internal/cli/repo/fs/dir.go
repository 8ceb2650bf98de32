package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// AppDirName: имя каталога приложения внутри пользовательского конфиг-каталога.
const AppDirName = "UniversalInbox"

var nameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// DefaultDir возвращает приватный каталог приложения, создавая его при необходимости.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, AppDirName)
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

// validName не допускает разделителей пути и пустых имён.
func validName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	if name == "." || name == ".." || !nameRe.MatchString(name) {
		return fmt.Errorf("invalid name: %q (allowed: letters, digits, . _ -)", name)
	}
	return nil
}

// writeFileAtomic пишет данные во временный файл и переименовывает его поверх target.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// после успешного rename файла уже нет
		_ = os.Remove(tmpName)
	}()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}
