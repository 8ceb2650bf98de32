package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
)

// keyLen: длина ключа XChaCha20-Poly1305 (в байтах).
const keyLen = chacha20poly1305.KeySize

// KeyFileName: имя файла ключа внутри каталога данных.
const KeyFileName = "key.bin"

// ErrInvalidKey: файл ключа повреждён или имеет неверную длину.
var ErrInvalidKey = errors.New("invalid key length")

// LoadOrCreateKey загружает ключ из dir/key.bin или создаёт новый случайный.
func LoadOrCreateKey(dir string) ([]byte, error) {
	if dir == "" {
		return nil, errors.New("empty key directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, KeyFileName)
	if b, err := os.ReadFile(path); err == nil {
		if len(b) != keyLen {
			return nil, ErrInvalidKey
		}
		return b, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	// записываем с ограниченными правами доступа
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// Sealer шифрует данные XChaCha20-Poly1305; nonce хранится префиксом шифртекста.
type Sealer struct {
	key []byte
}

// NewSealer проверяет длину ключа и возвращает Sealer.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != keyLen {
		return nil, ErrInvalidKey
	}
	k := make([]byte, keyLen)
	copy(k, key)
	return &Sealer{key: k}, nil
}

// Seal шифрует plain. additional привязывает шифртекст к контексту (например, к имени ключа).
func (s *Sealer) Seal(plain, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, additional), nil
}

// Open расшифровывает данные, полученные из Seal.
func (s *Sealer) Open(sealed, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, body, additional)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plain, nil
}
