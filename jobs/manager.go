package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ewintr.nl/ytsum/metrics"
	"ewintr.nl/ytsum/model"
	"ewintr.nl/ytsum/storage"
	"ewintr.nl/ytsum/youtube"
)

const (
	MinLength = 50
	MaxLength = 1000

	rateLimitWindow = 24 * time.Hour
	rateLimitMax    = 5

	processTimeout = 5 * time.Minute
)

type TranscriptSource interface {
	Transcript(ctx context.Context, videoID, language string) ([]model.TranscriptSnippet, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string, maxWords int) (string, int, error)
}

// MetadataFetcher enriches jobs with video titles. Optional, a nil
// fetcher skips enrichment.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoIDs []string) (map[string]youtube.Metadata, error)
}

// Manager owns the summarization job lifecycle: it validates and stores
// submissions, enforces the per-owner rate limit and hands the work to
// the pool. Processing happens detached from the submitting request.
type Manager struct {
	repo       storage.JobRepository
	transcript TranscriptSource
	summarizer Summarizer
	meta       MetadataFetcher
	pool       *Pool
	logger     *slog.Logger
}

func NewManager(repo storage.JobRepository, transcript TranscriptSource, summarizer Summarizer, meta MetadataFetcher, pool *Pool, logger *slog.Logger) *Manager {
	return &Manager{
		repo:       repo,
		transcript: transcript,
		summarizer: summarizer,
		meta:       meta,
		pool:       pool,
		logger:     logger,
	}
}

// Submit registers a summarization job for owner and queues it. On
// resubmission of the same video the existing job is reset to pending.
// The returned job reflects the stored row at submission time.
func (m *Manager) Submit(ctx context.Context, owner, url, language string, length int) (*model.SummaryJob, error) {
	if length < MinLength || length > MaxLength {
		return nil, model.NewErrorf(model.KindValidationFailed,
			"length must be between %d and %d words", MinLength, MaxLength)
	}

	videoID := youtube.ExtractVideoID(url)

	count, err := m.repo.CountCreatedSince(ctx, owner, time.Now().Add(-rateLimitWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent jobs: %w", err)
	}
	if count >= rateLimitMax {
		return nil, model.NewErrorf(model.KindRequestRateLimited,
			"Daily limit reached (%d summaries per 24 hours). Please try again later.", rateLimitMax)
	}

	job := &model.SummaryJob{
		Owner:           owner,
		VideoID:         videoID,
		ThumbnailURL:    model.ThumbnailURL(videoID),
		Language:        language,
		RequestedLength: length,
	}
	if err := m.repo.Upsert(ctx, job); err != nil {
		return nil, err
	}
	metrics.IncrJobsSubmitted()

	id, videoID := job.ID, job.VideoID
	if !m.pool.Submit(func() { m.process(id, videoID, language, length) }) {
		msg := "server busy, please try again later"
		if err := m.repo.SetError(ctx, id, msg); err != nil {
			m.logger.Error("could not mark job failed", slog.String("job", id.String()), slog.Any("error", err))
		}
		metrics.IncrJobsFailed()
		job.Status = model.StatusFailed
		job.ErrorMessage = msg

		return job, nil
	}

	return job, nil
}

func (m *Manager) Job(ctx context.Context, id uuid.UUID, owner string) (*model.SummaryJob, error) {
	return m.repo.FindByID(ctx, id, owner)
}

func (m *Manager) Jobs(ctx context.Context, owner string) ([]*model.SummaryJob, error) {
	return m.repo.FindByOwner(ctx, owner)
}

// process runs the pipeline for one job on its own context, the
// submitting request has long returned by the time this finishes.
func (m *Manager) process(id uuid.UUID, videoID, language string, length int) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	logger := m.logger.With(slog.String("job", id.String()), slog.String("video", videoID))
	if err := m.repo.SetStatus(ctx, id, model.StatusProcessing); err != nil {
		logger.Error("could not mark job processing", slog.Any("error", err))
		return
	}

	m.enrichTitle(ctx, id, videoID, logger)

	snippets, err := m.transcript.Transcript(ctx, videoID, language)
	if err != nil {
		m.fail(ctx, id, err, logger)
		return
	}
	text := youtube.ToText(snippets, " ")

	summary, wordCount, err := m.summarizer.Summarize(ctx, text, length)
	if err != nil {
		m.fail(ctx, id, err, logger)
		return
	}

	if err := m.repo.SetResult(ctx, id, summary, wordCount); err != nil {
		logger.Error("could not store summary", slog.Any("error", err))
		return
	}
	metrics.IncrJobsCompleted()
	logger.Info("job completed", slog.Int("words", wordCount))
}

func (m *Manager) enrichTitle(ctx context.Context, id uuid.UUID, videoID string, logger *slog.Logger) {
	if m.meta == nil {
		return
	}

	found, err := m.meta.FetchMetadata(ctx, []string{videoID})
	if err != nil {
		logger.Warn("could not fetch video metadata", slog.Any("error", err))
		return
	}
	md, ok := found[videoID]
	if !ok || md.Title == "" {
		return
	}
	if err := m.repo.SetVideoTitle(ctx, id, md.Title); err != nil {
		logger.Error("could not store video title", slog.Any("error", err))
	}
}

func (m *Manager) fail(ctx context.Context, id uuid.UUID, cause error, logger *slog.Logger) {
	if err := m.repo.SetError(ctx, id, cause.Error()); err != nil {
		logger.Error("could not mark job failed", slog.Any("error", err))
		return
	}
	metrics.IncrJobsFailed()
	logger.Info("job failed", slog.String("kind", string(model.KindOf(cause))), slog.Any("error", cause))
}
