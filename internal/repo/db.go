package repo

import (
	"UniversalInbox/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DefaultSQLiteDSN используется, если DSN не задан.
const DefaultSQLiteDSN = "file:records.sqlite?_pragma=busy_timeout(5000)"

// isPostgresDSN распознаёт URL и key=value формы DSN Postgres.
func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// dialectorFor выбирает драйвер по DSN: Postgres или SQLite (modernc, без cgo).
func dialectorFor(dsn string) gorm.Dialector {
	if isPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}

// InitDB открывает базу и мигрирует таблицы записей.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialectorFor(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт или обновляет таблицы.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.ItemRecord{}, &model.BinRecord{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
