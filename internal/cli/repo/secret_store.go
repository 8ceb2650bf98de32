package repo

import "context"

// SecretKey идентифицирует секрет парой service/account.
type SecretKey struct {
	Service string
	Account string
}

// APIKeySecret: пара, под которой хранится API-ключ.
var APIKeySecret = SecretKey{Service: "com.universalinbox.openai", Account: "openai_api_key"}

// SecretStore описывает защищённое хранилище секретов, отдельное от JSON-состояния.
type SecretStore interface {
	Get(ctx context.Context, key SecretKey) ([]byte, bool, error)
	Set(ctx context.Context, key SecretKey, value []byte) error
	// Delete удаляет секрет; отсутствие секрета ошибкой не является.
	Delete(ctx context.Context, key SecretKey) error
}
