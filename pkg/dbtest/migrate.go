package dbtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
)

// MigrateDir применяет все *.sql каталога в порядке имён файлов.
func MigrateDir(db *sqlx.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("os.ReadDir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}

		query, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("os.ReadFile: %w", err)
		}

		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// Truncate очищает таблицы между тестами.
func Truncate(db *sqlx.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	if _, err := db.Exec("TRUNCATE " + strings.Join(tables, ", ")); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	return nil
}
