package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"ewintr.nl/ytsum/model"
	"ewintr.nl/ytsum/youtube"
)

type fakeRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*model.SummaryJob
	done chan uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		jobs: map[uuid.UUID]*model.SummaryJob{},
		done: make(chan uuid.UUID, 16),
	}
}

func (r *fakeRepo) Upsert(_ context.Context, job *model.SummaryJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.jobs {
		if existing.Owner == job.Owner && existing.VideoID == job.VideoID {
			existing.Language = job.Language
			existing.RequestedLength = job.RequestedLength
			existing.Status = model.StatusPending
			existing.Summary = ""
			existing.WordCount = 0
			existing.ErrorMessage = ""
			existing.UpdatedAt = time.Now()
			*job = *existing
			return nil
		}
	}

	job.ID = uuid.New()
	job.Status = model.StatusPending
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	stored := *job
	r.jobs[job.ID] = &stored

	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID, owner string) (*model.SummaryJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Owner != owner {
		return nil, model.NewError(model.KindNotFound, "not found")
	}
	clone := *job

	return &clone, nil
}

func (r *fakeRepo) FindByOwner(_ context.Context, owner string) ([]*model.SummaryJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var list []*model.SummaryJob
	for _, job := range r.jobs {
		if job.Owner == owner {
			clone := *job
			list = append(list, &clone)
		}
	}

	return list, nil
}

func (r *fakeRepo) CountCreatedSince(_ context.Context, owner string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, job := range r.jobs {
		if job.Owner == owner && job.CreatedAt.After(since) {
			count++
		}
	}

	return count, nil
}

func (r *fakeRepo) SetStatus(_ context.Context, id uuid.UUID, status model.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = status
	}

	return nil
}

func (r *fakeRepo) SetResult(_ context.Context, id uuid.UUID, summary string, wordCount int) error {
	r.mu.Lock()
	if job, ok := r.jobs[id]; ok {
		job.Status = model.StatusCompleted
		job.Summary = summary
		job.WordCount = wordCount
		job.ErrorMessage = ""
	}
	r.mu.Unlock()
	r.done <- id

	return nil
}

func (r *fakeRepo) SetError(_ context.Context, id uuid.UUID, message string) error {
	r.mu.Lock()
	if job, ok := r.jobs[id]; ok {
		job.Status = model.StatusFailed
		job.ErrorMessage = message
		job.Summary = ""
		job.WordCount = 0
	}
	r.mu.Unlock()
	r.done <- id

	return nil
}

func (r *fakeRepo) SetVideoTitle(_ context.Context, id uuid.UUID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.VideoTitle = title
	}

	return nil
}

func (r *fakeRepo) waitDone(t *testing.T) uuid.UUID {
	t.Helper()
	select {
	case id := <-r.done:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("job did not reach a terminal status")
		return uuid.Nil
	}
}

type fakeTranscripts struct {
	err error
}

func (f *fakeTranscripts) Transcript(_ context.Context, videoID, language string) ([]model.TranscriptSnippet, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []model.TranscriptSnippet{
		{Text: "hello", Start: 0, Duration: 1},
		{Text: "world", Start: 1, Duration: 1},
	}, nil
}

type fakeSummarizer struct {
	err error
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, maxWords int) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}

	return "a summary", 2, nil
}

type fakeMeta struct {
	titles map[string]string
}

func (f *fakeMeta) FetchMetadata(_ context.Context, ids []string) (map[string]youtube.Metadata, error) {
	found := map[string]youtube.Metadata{}
	for _, id := range ids {
		if title, ok := f.titles[id]; ok {
			found[id] = youtube.Metadata{Title: title}
		}
	}

	return found, nil
}

func newTestManager(t *testing.T, repo *fakeRepo, transcripts TranscriptSource, summarizer Summarizer, meta MetadataFetcher) *Manager {
	t.Helper()
	pool := NewPool(1, 16, testLogger())
	pool.Start()
	t.Cleanup(pool.Stop)

	return NewManager(repo, transcripts, summarizer, meta, pool, testLogger())
}

func TestSubmitValidatesLength(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(t, repo, &fakeTranscripts{}, &fakeSummarizer{}, nil)

	tests := []struct {
		length int
		valid  bool
	}{
		{49, false},
		{50, true},
		{1000, true},
		{1001, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("length %d", tt.length), func(t *testing.T) {
			_, err := m.Submit(context.Background(), "test@example.com", fmt.Sprintf("video%06d", tt.length), "en", tt.length)
			if tt.valid && err != nil {
				t.Errorf("Submit() error: %v", err)
			}
			if !tt.valid && model.KindOf(err) != model.KindValidationFailed {
				t.Errorf("kind = %q, want %q", model.KindOf(err), model.KindValidationFailed)
			}
		})
	}
}

func TestSubmitRateLimit(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(t, repo, &fakeTranscripts{}, &fakeSummarizer{}, nil)

	for i := 0; i < 5; i++ {
		if _, err := m.Submit(context.Background(), "test@example.com", fmt.Sprintf("video%06d", i), "en", 300); err != nil {
			t.Fatalf("Submit() %d error: %v", i, err)
		}
	}

	_, err := m.Submit(context.Background(), "test@example.com", "video000006", "en", 300)
	if kind := model.KindOf(err); kind != model.KindRequestRateLimited {
		t.Errorf("kind = %q, want %q", kind, model.KindRequestRateLimited)
	}

	// another owner is not affected
	if _, err := m.Submit(context.Background(), "other@example.com", "video000007", "en", 300); err != nil {
		t.Errorf("Submit() for other owner error: %v", err)
	}
}

func TestSubmitRateLimitWindowExpires(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 5; i++ {
		id := uuid.New()
		repo.jobs[id] = &model.SummaryJob{
			ID:        id,
			Owner:     "test@example.com",
			VideoID:   fmt.Sprintf("old%08d", i),
			Status:    model.StatusCompleted,
			CreatedAt: time.Now().Add(-25 * time.Hour),
		}
	}
	m := newTestManager(t, repo, &fakeTranscripts{}, &fakeSummarizer{}, nil)

	if _, err := m.Submit(context.Background(), "test@example.com", "freshvideo0", "en", 300); err != nil {
		t.Errorf("Submit() error: %v", err)
	}
}

func TestSubmitResetsExistingJob(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(t, repo, &fakeTranscripts{}, &fakeSummarizer{}, nil)

	first, err := m.Submit(context.Background(), "test@example.com", "dQw4w9WgXcQ", "en", 300)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	repo.waitDone(t)

	second, err := m.Submit(context.Background(), "test@example.com", "dQw4w9WgXcQ", "nl", 500)
	if err != nil {
		t.Fatalf("resubmit error: %v", err)
	}
	repo.waitDone(t)

	if second.ID != first.ID {
		t.Errorf("resubmission created a new job: %s != %s", second.ID, first.ID)
	}
	if second.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", second.Status, model.StatusPending)
	}
	if second.Summary != "" || second.WordCount != 0 || second.ErrorMessage != "" {
		t.Errorf("resubmission did not clear results: %+v", second)
	}
	if second.Language != "nl" || second.RequestedLength != 500 {
		t.Errorf("resubmission did not update parameters: %+v", second)
	}
}

func TestProcessCompletes(t *testing.T) {
	repo := newFakeRepo()
	meta := &fakeMeta{titles: map[string]string{"dQw4w9WgXcQ": "Some Video"}}
	m := newTestManager(t, repo, &fakeTranscripts{}, &fakeSummarizer{}, meta)

	job, err := m.Submit(context.Background(), "test@example.com", "https://youtu.be/dQw4w9WgXcQ", "en", 300)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if job.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("video id = %q, want resolved id", job.VideoID)
	}
	repo.waitDone(t)

	stored, err := m.Job(context.Background(), job.ID, "test@example.com")
	if err != nil {
		t.Fatalf("Job() error: %v", err)
	}
	if stored.Status != model.StatusCompleted {
		t.Errorf("status = %q, want %q", stored.Status, model.StatusCompleted)
	}
	if stored.Summary != "a summary" || stored.WordCount != 2 {
		t.Errorf("result = %q (%d words), want fake summary", stored.Summary, stored.WordCount)
	}
	if stored.VideoTitle != "Some Video" {
		t.Errorf("video title = %q, want enriched title", stored.VideoTitle)
	}
}

func TestProcessFails(t *testing.T) {
	repo := newFakeRepo()
	cause := model.NewError(model.KindNoCaptionsAvailable, "no transcript found for video: dQw4w9WgXcQ")
	m := newTestManager(t, repo, &fakeTranscripts{err: cause}, &fakeSummarizer{}, nil)

	job, err := m.Submit(context.Background(), "test@example.com", "dQw4w9WgXcQ", "en", 300)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	repo.waitDone(t)

	stored, err := m.Job(context.Background(), job.ID, "test@example.com")
	if err != nil {
		t.Fatalf("Job() error: %v", err)
	}
	if stored.Status != model.StatusFailed {
		t.Errorf("status = %q, want %q", stored.Status, model.StatusFailed)
	}
	if stored.ErrorMessage != cause.Error() {
		t.Errorf("error message = %q, want %q", stored.ErrorMessage, cause.Error())
	}
}

func TestSubmitQueueFull(t *testing.T) {
	repo := newFakeRepo()
	pool := NewPool(1, 1, testLogger())
	// not started, the queue fills immediately
	m := NewManager(repo, &fakeTranscripts{}, &fakeSummarizer{}, nil, pool, testLogger())

	if _, err := m.Submit(context.Background(), "test@example.com", "video000001", "en", 300); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	job, err := m.Submit(context.Background(), "test@example.com", "video000002", "en", 300)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if job.Status != model.StatusFailed {
		t.Errorf("status = %q, want %q when the queue is full", job.Status, model.StatusFailed)
	}
}
