package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory catalog.
const MemoryPath = ":memory:"

// pragmas run on every freshly opened catalog database, in order.
var pragmas = []struct {
	stmt string
	what string
}{
	{"PRAGMA journal_mode = WAL", "setting WAL mode"},
	{"PRAGMA foreign_keys = ON", "enabling foreign keys"},
	{"PRAGMA busy_timeout = 5000", "setting busy timeout"},
}

// OpenDB opens the catalog store at path, creating its parent directory,
// applying pragmas and bringing the schema up to date. The caller owns the
// returned handle.
func OpenDB(path string) (*sql.DB, error) {
	memory := path == MemoryPath
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	// Each connection to :memory: would see its own empty database.
	if memory {
		database.SetMaxOpenConns(1)
	}

	if err := prepare(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func prepare(database *sql.DB) error {
	for _, p := range pragmas {
		if _, err := database.Exec(p.stmt); err != nil {
			return fmt.Errorf("%s: %w", p.what, err)
		}
	}
	if err := Migrate(database); err != nil {
		return fmt.Errorf("migrating catalog schema: %w", err)
	}
	return nil
}
