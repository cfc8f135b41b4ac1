package render

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Format selects the deliverable a render job produces.
type Format string

const (
	FormatFull  Format = "full_16_9"
	FormatShort Format = "short_9_16"
	FormatClip  Format = "clip_1_1"
)

// ParseFormat normalizes a user-supplied render format.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatFull, FormatShort, FormatClip:
		return Format(value), nil
	}
	return "", fmt.Errorf("unknown render format %q (expected full_16_9, short_9_16, or clip_1_1)", value)
}

// AspectRatio returns the deliverable's display aspect ratio.
func (f Format) AspectRatio() string {
	switch f {
	case FormatShort:
		return "9:16"
	case FormatClip:
		return "1:1"
	}
	return "16:9"
}

// Status is a render job's lifecycle state.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether the job can make no further progress on its own.
// Failed jobs are terminal but retryable.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Job is one render request against a locked EDL version. The output and
// metric fields are only populated once the farm reports completion.
type Job struct {
	ID                 string    `json:"id"`
	SessionID          string    `json:"sessionId"`
	EDLVersion         int       `json:"edlVersion"`
	Format             Format    `json:"format"`
	Status             Status    `json:"status"`
	FarmJobID          string    `json:"farmJobId,omitempty"`
	Progress           int       `json:"progress"`
	OutputURL          string    `json:"outputUrl,omitempty"`
	OutputThumbnailURL string    `json:"outputThumbnailUrl,omitempty"`
	OutputSubtitlesURL string    `json:"outputSubtitlesUrl,omitempty"`
	Error              string    `json:"error,omitempty"`
	DurationMs         int64     `json:"durationMs,omitempty"`
	FileSizeBytes      int64     `json:"fileSizeBytes,omitempty"`
	Resolution         string    `json:"resolution,omitempty"`
	Fps                float64   `json:"fps,omitempty"`
	RenderDurationMs   int64     `json:"renderDurationMs,omitempty"`
	Attempts           int       `json:"attempts"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	StartedAt          time.Time `json:"startedAt,omitzero"`
	CompletedAt        time.Time `json:"completedAt,omitzero"`
}

// NewJob creates a queued job with a collision-resistant, time-sortable id.
func NewJob(sessionID string, edlVersion int, format Format, now time.Time) *Job {
	return &Job{
		ID:         fmt.Sprintf("render-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		SessionID:  sessionID,
		EDLVersion: edlVersion,
		Format:     format,
		Status:     StatusQueued,
		Attempts:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
