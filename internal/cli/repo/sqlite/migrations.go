package sqlite

import (
	"embed"
	"io/fs"
	"sort"
)

// Миграции клиента применяются по порядку имён файлов; каждая идемпотентна.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func migrationScripts() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	scripts := make([]string, 0, len(names))
	for _, n := range names {
		b, err := migrationsFS.ReadFile(n)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, string(b))
	}
	return scripts, nil
}
