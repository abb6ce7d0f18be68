package sqlite

import (
	"context"
	"database/sql"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS summaries (
    summary_id        TEXT PRIMARY KEY,
    owner_id          TEXT NOT NULL,
    title             TEXT NOT NULL,
    original_text     TEXT NOT NULL,
    instruction       TEXT NOT NULL,
    generated_summary TEXT NOT NULL,
    edited_summary    TEXT NOT NULL DEFAULT '',
    tags              TEXT NOT NULL DEFAULT '[]',
    is_public         INTEGER NOT NULL DEFAULT 0,
    creation_time     TIMESTAMP NOT NULL,
    update_time       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_owner_creation
    ON summaries (owner_id, creation_time DESC);
`

// bootstrapSchema creates the summaries table and indexes if missing.
// Idempotent; runs on every open so local files need no migration step.
func bootstrapSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}
