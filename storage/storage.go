package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ewintr.nl/ytsum/model"
)

// JobRepository is the durable record store for summarization jobs. It
// must support concurrent upsert-by-unique-key and update-by-id.
type JobRepository interface {
	// Upsert inserts a job for (owner, video id) or resets the existing
	// row to pending, clearing prior results. The stored row is written
	// back into job.
	Upsert(ctx context.Context, job *model.SummaryJob) error
	FindByID(ctx context.Context, id uuid.UUID, owner string) (*model.SummaryJob, error)
	// FindByOwner returns an owner's jobs ordered by creation time
	// descending.
	FindByOwner(ctx context.Context, owner string) ([]*model.SummaryJob, error)
	// CountCreatedSince counts an owner's jobs created after since,
	// irrespective of status.
	CountCreatedSince(ctx context.Context, owner string, since time.Time) (int, error)

	SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error
	SetResult(ctx context.Context, id uuid.UUID, summary string, wordCount int) error
	SetError(ctx context.Context, id uuid.UUID, message string) error
	SetVideoTitle(ctx context.Context, id uuid.UUID, title string) error
}
