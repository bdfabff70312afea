package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements create the database schema. All use IF NOT EXISTS so
// they can be re-applied.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS predictions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		target      INTEGER NOT NULL UNIQUE,
		suit        TEXT    NOT NULL,
		source_game INTEGER NOT NULL,
		status      TEXT    NOT NULL DEFAULT 'pending',
		attempt     INTEGER NOT NULL DEFAULT 0,
		message_id  INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL,
		resolved_at INTEGER
	)`,

	`CREATE INDEX IF NOT EXISTS idx_predictions_status ON predictions(status, target)`,
}

// migrate brings the schema to schemaVersion.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}
	return nil
}
