package render

import (
	"fmt"
	"time"

	"cutroom/internal/services"
)

// validTransitions is the single source of truth for job state changes.
// queued->failed covers submission failures that never reach the farm.
var validTransitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusFailed:     {StatusQueued},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanRetry reports whether the job may be resubmitted.
func (j *Job) CanRetry() bool {
	return j.Status == StatusFailed
}

// CanCancel reports whether the job can still be cancelled.
func (j *Job) CanCancel() bool {
	return j.Status == StatusQueued || j.Status == StatusProcessing
}

// ApplyTransition moves the job to a new status, stamping the relevant
// timestamps. Every status change in the codebase goes through here.
func (j *Job) ApplyTransition(to Status, now time.Time) error {
	if !CanTransition(j.Status, to) {
		return services.Wrap(services.ErrConflict, "render", "transition",
			fmt.Sprintf("job %s cannot move from %s to %s", j.ID, j.Status, to), nil)
	}
	from := j.Status
	j.Status = to
	j.UpdatedAt = now

	switch to {
	case StatusProcessing:
		if j.StartedAt.IsZero() {
			j.StartedAt = now
		}
	case StatusCompleted:
		j.Progress = 100
		j.CompletedAt = now
	case StatusFailed, StatusCancelled:
		j.CompletedAt = now
	case StatusQueued:
		// Retry path: reset run state so the next attempt starts clean.
		if from == StatusFailed {
			j.Progress = 0
			j.Error = ""
			j.OutputURL = ""
			j.OutputThumbnailURL = ""
			j.OutputSubtitlesURL = ""
			j.DurationMs = 0
			j.FileSizeBytes = 0
			j.Resolution = ""
			j.Fps = 0
			j.RenderDurationMs = 0
			j.FarmJobID = ""
			j.StartedAt = time.Time{}
			j.CompletedAt = time.Time{}
			j.Attempts++
		}
	}
	return nil
}

// SetProgress records farm-reported progress. Progress never moves backwards
// and stays in 0..100; stale poll responses arriving out of order must not
// make the bar jump around.
func (j *Job) SetProgress(progress int, now time.Time) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if progress > j.Progress {
		j.Progress = progress
		j.UpdatedAt = now
	}
}
