package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cutroom/internal/render"
	"cutroom/internal/services"
)

// CreateJob inserts a new render job.
func (s *Store) CreateJob(ctx context.Context, job *render.Job) error {
	_, err := s.execWithRetry(ctx, `
		INSERT INTO render_jobs (id, session_id, edl_version, format, status, farm_job_id,
			progress, output_url, thumbnail_url, subtitles_url, error,
			duration_ms, file_size_bytes, resolution, fps, render_duration_ms,
			attempts, created_at, updated_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.SessionID, job.EDLVersion, string(job.Format), string(job.Status),
		job.FarmJobID, job.Progress, job.OutputURL, job.OutputThumbnailURL, job.OutputSubtitlesURL,
		job.Error, job.DurationMs, job.FileSizeBytes, job.Resolution, job.Fps, job.RenderDurationMs,
		job.Attempts, formatTime(job.CreatedAt), formatTime(job.UpdatedAt),
		formatTime(job.StartedAt), formatTime(job.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert render job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob loads one render job by id.
func (s *Store) GetJob(ctx context.Context, id string) (*render.Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, edl_version, format, status, farm_job_id,
			progress, output_url, thumbnail_url, subtitles_url, error,
			duration_ms, file_size_bytes, resolution, fps, render_duration_ms,
			attempts, created_at, updated_at, started_at, completed_at
		FROM render_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get-job",
			fmt.Sprintf("render job %s not found", id), nil)
	}
	return job, err
}

// SaveJob persists a job's mutable fields, guarded on the status the caller
// read. A concurrent transition makes the save fail with ErrStale instead of
// silently overwriting it.
func (s *Store) SaveJob(ctx context.Context, job *render.Job, expect render.Status) error {
	res, err := s.execWithRetry(ctx, `
		UPDATE render_jobs SET status = ?, farm_job_id = ?, progress = ?, output_url = ?,
			thumbnail_url = ?, subtitles_url = ?, error = ?,
			duration_ms = ?, file_size_bytes = ?, resolution = ?, fps = ?, render_duration_ms = ?,
			attempts = ?, updated_at = ?, started_at = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		string(job.Status), job.FarmJobID, job.Progress, job.OutputURL,
		job.OutputThumbnailURL, job.OutputSubtitlesURL, job.Error,
		job.DurationMs, job.FileSizeBytes, job.Resolution, job.Fps, job.RenderDurationMs,
		job.Attempts, formatTime(job.UpdatedAt),
		formatTime(job.StartedAt), formatTime(job.CompletedAt),
		job.ID, string(expect))
	if err != nil {
		return fmt.Errorf("save render job %s: %w", job.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save render job %s: %w", job.ID, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrConflict, "store", "save-job",
			fmt.Sprintf("render job %s is no longer %s", job.ID, expect), ErrStale)
	}
	return nil
}

// ListJobsForSession returns a session's render jobs, newest first.
func (s *Store) ListJobsForSession(ctx context.Context, sessionID string) ([]*render.Job, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, edl_version, format, status, farm_job_id,
			progress, output_url, thumbnail_url, subtitles_url, error,
			duration_ms, file_size_bytes, resolution, fps, render_duration_ms,
			attempts, created_at, updated_at, started_at, completed_at
		FROM render_jobs WHERE session_id = ? ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list render jobs for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var jobs []*render.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*render.Job, error) {
	var (
		job                                          render.Job
		format, status                               string
		createdAt, updatedAt, startedAt, completedAt string
	)
	err := row.Scan(&job.ID, &job.SessionID, &job.EDLVersion, &format, &status,
		&job.FarmJobID, &job.Progress, &job.OutputURL, &job.OutputThumbnailURL,
		&job.OutputSubtitlesURL, &job.Error, &job.DurationMs, &job.FileSizeBytes,
		&job.Resolution, &job.Fps, &job.RenderDurationMs, &job.Attempts,
		&createdAt, &updatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	job.Format = render.Format(format)
	job.Status = render.Status(status)
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	job.StartedAt = parseTime(startedAt)
	job.CompletedAt = parseTime(completedAt)
	return &job, nil
}
