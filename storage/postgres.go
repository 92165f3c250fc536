package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"ewintr.nl/ytsum/model"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(info PostgresInfo) (*Postgres, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		info.Host, info.Port, info.User, info.Password, info.Database))
	if err != nil {
		return &Postgres{}, err
	}
	if err := db.Ping(); err != nil {
		return &Postgres{}, err
	}

	p := &Postgres{db: db}
	if err := p.migrate(pgMigration); err != nil {
		return &Postgres{}, err
	}

	return p, nil
}

func (p *Postgres) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	_, err := p.db.Exec(query)
	if err != nil {
		return err
	}

	// find existing
	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := p.db.Exec(`
INSERT INTO migration
(query) VALUES ($1)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}

type PostgresJobRepository struct {
	db *sql.DB
}

func NewPostgresJobRepository(p *Postgres) *PostgresJobRepository {
	return &PostgresJobRepository{db: p.db}
}

const jobColumns = `id, owner_email, video_id, thumbnail_url, COALESCE(video_title, ''), language,
requested_length, status, COALESCE(summary, ''), COALESCE(word_count, 0), COALESCE(error_message, ''),
created_at, updated_at`

func (r *PostgresJobRepository) Upsert(ctx context.Context, job *model.SummaryJob) error {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO summary_job (id, owner_email, video_id, thumbnail_url, language, requested_length, status)
VALUES ($1, $2, $3, $4, $5, $6, 'pending')
ON CONFLICT (owner_email, video_id) DO UPDATE SET
language = EXCLUDED.language,
requested_length = EXCLUDED.requested_length,
status = 'pending',
summary = NULL,
word_count = NULL,
error_message = NULL,
updated_at = now()
RETURNING `+jobColumns,
		uuid.New(), job.Owner, job.VideoID, job.ThumbnailURL, job.Language, job.RequestedLength)

	stored, err := scanJob(row)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	*job = *stored

	return nil
}

func (r *PostgresJobRepository) FindByID(ctx context.Context, id uuid.UUID, owner string) (*model.SummaryJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+jobColumns+`
FROM summary_job
WHERE id = $1 AND owner_email = $2`, id, owner)

	job, err := scanJob(row)
	switch {
	case err == sql.ErrNoRows:
		return nil, model.NewError(model.KindNotFound, "not found")
	case err != nil:
		return nil, fmt.Errorf("find job: %w", err)
	}

	return job, nil
}

func (r *PostgresJobRepository) FindByOwner(ctx context.Context, owner string) ([]*model.SummaryJob, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM summary_job
WHERE owner_email = $1
ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("find jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*model.SummaryJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("find jobs: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func (r *PostgresJobRepository) CountCreatedSince(ctx context.Context, owner string, since time.Time) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM summary_job
WHERE owner_email = $1 AND created_at > $2`, owner, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}

	return count, nil
}

func (r *PostgresJobRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE summary_job SET status = $1, updated_at = now() WHERE id = $2`, status, id)

	return err
}

func (r *PostgresJobRepository) SetResult(ctx context.Context, id uuid.UUID, summary string, wordCount int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE summary_job SET status = 'completed', summary = $1, word_count = $2, error_message = NULL, updated_at = now()
WHERE id = $3`, summary, wordCount, id)

	return err
}

func (r *PostgresJobRepository) SetError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE summary_job SET status = 'failed', error_message = $1, summary = NULL, word_count = NULL, updated_at = now()
WHERE id = $2`, message, id)

	return err
}

func (r *PostgresJobRepository) SetVideoTitle(ctx context.Context, id uuid.UUID, title string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE summary_job SET video_title = $1, updated_at = now() WHERE id = $2`, title, id)

	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*model.SummaryJob, error) {
	var job model.SummaryJob
	if err := row.Scan(&job.ID, &job.Owner, &job.VideoID, &job.ThumbnailURL, &job.VideoTitle,
		&job.Language, &job.RequestedLength, &job.Status, &job.Summary, &job.WordCount,
		&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}

	return &job, nil
}
