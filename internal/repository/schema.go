package repository

import (
	"context"
	"database/sql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id SERIAL PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('image', 'carousel', 'reel')),
		caption TEXT NOT NULL DEFAULT '',
		media_urls TEXT NOT NULL DEFAULT '[]',
		scheduled_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'publishing', 'published', 'failed')),
		ig_media_id TEXT,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id INT PRIMARY KEY CHECK (id = 1),
		page_token TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_log (
		id SERIAL PRIMARY KEY,
		topic_id TEXT NOT NULL,
		template_name TEXT,
		content_json TEXT,
		post_id INT,
		status TEXT NOT NULL DEFAULT 'started' CHECK (status IN ('started', 'completed', 'failed')),
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// InitSchema creates the tables on boot if they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
