package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further automatic transition occurs.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SummaryJob is one summarization request and its lifecycle outcome.
// There is exactly one row per (owner, video id) pair; resubmission
// resets the existing row instead of creating a new one.
type SummaryJob struct {
	ID              uuid.UUID `json:"id"`
	Owner           string    `json:"owner_email"`
	VideoID         string    `json:"video_id"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	VideoTitle      string    `json:"video_title,omitempty"`
	Language        string    `json:"language"`
	RequestedLength int       `json:"requested_length"`
	Status          JobStatus `json:"status"`
	Summary         string    `json:"summary,omitempty"`
	WordCount       int       `json:"word_count,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ThumbnailURL derives the preview image location for a video id.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", videoID)
}
