package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE statements fail on re-run once the column exists.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		domain       TEXT NOT NULL CHECK(domain IN ('Books','Movie')),
		seq          INTEGER NOT NULL DEFAULT 0,
		name         TEXT NOT NULL,
		avatar       TEXT NOT NULL DEFAULT '',
		age          TEXT NOT NULL DEFAULT '',
		gender       TEXT NOT NULL DEFAULT '',
		occupation   TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT '',
		traits_json  TEXT NOT NULL DEFAULT '[]',
		raw_profile  TEXT NOT NULL DEFAULT '',
		ground_truth TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS history_items (
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		title         TEXT NOT NULL,
		year          TEXT NOT NULL DEFAULT '',
		genre         TEXT NOT NULL DEFAULT '',
		rating        TEXT NOT NULL DEFAULT '',
		cover         TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		author        TEXT NOT NULL DEFAULT '',
		published_at  TEXT NOT NULL DEFAULT '',
		pages         TEXT NOT NULL DEFAULT '',
		global_rating TEXT NOT NULL DEFAULT '',
		my_behavior   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS exposure_items (
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		title        TEXT NOT NULL,
		year         TEXT NOT NULL DEFAULT '',
		genre        TEXT NOT NULL DEFAULT '',
		cover        TEXT NOT NULL DEFAULT '',
		author       TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL DEFAULT '',
		pages        TEXT NOT NULL DEFAULT '',
		rating       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS model_outputs (
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		cache_key   TEXT NOT NULL,
		result_json TEXT NOT NULL,
		PRIMARY KEY (user_id, cache_key)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_domain ON users(domain, seq)`,

	`ALTER TABLE users ADD COLUMN imported_at TEXT NOT NULL DEFAULT ''`,
}
