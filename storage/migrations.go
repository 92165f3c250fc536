package storage

var pgMigration = []string{
	`CREATE TYPE summary_status AS ENUM ('pending', 'processing', 'completed', 'failed')`,
	`CREATE TABLE summary_job (
id uuid PRIMARY KEY,
owner_email VARCHAR(255) NOT NULL,
video_id VARCHAR(255) NOT NULL,
thumbnail_url VARCHAR(255) NOT NULL,
language VARCHAR(32) NOT NULL,
requested_length INTEGER NOT NULL,
status summary_status NOT NULL DEFAULT 'pending',
summary TEXT,
word_count INTEGER,
error_message TEXT,
created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
UNIQUE (owner_email, video_id)
)`,
	`CREATE INDEX summary_job_owner_created ON summary_job (owner_email, created_at)`,
	`ALTER TABLE summary_job ADD COLUMN video_title VARCHAR(255)`,
}
