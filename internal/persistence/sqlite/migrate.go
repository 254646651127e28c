package sqlite

import (
	"context"
	"fmt"
)

// Schema notes: timeslots carry a position column preserving creation order,
// votes cascade with their timeslot, and voters are keyed by (session_id,
// name) matching the per-session identity scheme.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		creator_name TEXT NOT NULL,
		shape TEXT NOT NULL,
		rules_date TEXT,
		rules_min_time TEXT NOT NULL DEFAULT '',
		rules_max_time TEXT NOT NULL DEFAULT '',
		rules_allowed_days TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		expires_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS timeslots (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		start_utc TEXT NOT NULL,
		end_utc TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timeslots_session ON timeslots(session_id, position)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id TEXT PRIMARY KEY,
		timeslot_id TEXT NOT NULL REFERENCES timeslots(id) ON DELETE CASCADE,
		voter_name TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		cast_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_timeslot ON votes(timeslot_id)`,
	`CREATE TABLE IF NOT EXISTS voters (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		joined_at TEXT NOT NULL,
		PRIMARY KEY (session_id, name)
	)`,
}

// Migrate creates the schema. Statements are idempotent, so running Migrate
// on every startup is safe.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, statement := range schema {
		if _, err := cp.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
