package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"UniversalInbox/internal/cli/repo"

	_ "modernc.org/sqlite"
)

// DBFileName: имя файла БД внутри каталога данных.
const DBFileName = "inbox.sqlite"

// KVStoreSQLite: key-value хранилище клиента в таблице kv (SQLite).
type KVStoreSQLite struct {
	db *sql.DB
}

var (
	_ repo.KVStore      = (*KVStoreSQLite)(nil)
	_ repo.UpdateTracker = (*KVStoreSQLite)(nil)
)

// Open открывает (и создаёт при необходимости) файл БД в каталоге dir.
// Вторым значением возвращается путь к БД.
func Open(dir string) (*KVStoreSQLite, string, error) {
	if dir == "" {
		return nil, "", errors.New("empty data directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	// одна запись за раз: SQLite не любит параллельных писателей
	db.SetMaxOpenConns(1)
	return &KVStoreSQLite{db: db}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *KVStoreSQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц.
func (r *KVStoreSQLite) Migrate() error {
	scripts, err := migrationScripts()
	if err != nil {
		return err
	}
	for _, ddl := range scripts {
		if _, err := r.db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// Get возвращает значение по ключу.
func (r *KVStoreSQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, errors.New("empty key")
	}
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set вставляет или обновляет значение по ключу.
func (r *KVStoreSQLite) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("empty key")
	}
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	return err
}

// UpdatedAt возвращает время последней записи ключа (точность: секунды).
func (r *KVStoreSQLite) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ts int64
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, repo.ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0), nil
}
