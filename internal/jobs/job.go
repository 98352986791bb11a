package jobs

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a job. Transitions are monotonic:
// processing ends in completed or failed; extracting advances to
// transcribing before ending the same way.
type Status string

const (
	StatusProcessing   Status = "processing"
	StatusExtracting   Status = "extracting"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one tracked unit of extraction and/or transcription work.
type Job struct {
	ID        string    `json:"job_id"`
	VideoID   string    `json:"video_id"`
	Status    Status    `json:"status"`
	Result    string    `json:"result,omitempty"`
	FileSize  int64     `json:"file_size,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID builds the job identifier from the video ID and creation time.
// The <videoID>-<unixNanos> format is a caller-visible contract; the
// nanosecond resolution keeps IDs distinct across back-to-back requests
// for the same video. Age is always computed from the CreatedAt field,
// never parsed back out of the ID.
func NewID(videoID string, now time.Time) string {
	return fmt.Sprintf("%s-%d", videoID, now.UnixNano())
}
