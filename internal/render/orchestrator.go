package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cutroom/internal/edl"
	"cutroom/internal/logging"
	"cutroom/internal/services"
)

// Store is the persistence surface the orchestrator needs. Implemented by
// *store.Store.
type Store interface {
	LockedEDL(ctx context.Context, sessionID string) (*edl.Document, error)
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	SaveJob(ctx context.Context, job *Job, expect Status) error
	ListJobsForSession(ctx context.Context, sessionID string) ([]*Job, error)
}

// Orchestrator submits render jobs against locked EDLs and tracks them
// through the farm until they settle.
type Orchestrator struct {
	store        Store
	farm         Farm
	pollInterval time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(store Store, farm Farm, pollInterval time.Duration, logger *slog.Logger) *Orchestrator {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:        store,
		farm:         farm,
		pollInterval: pollInterval,
		logger:       logging.NewComponentLogger(logger, "render"),
		now:          time.Now,
	}
}

// Submit creates a render job for a session's locked EDL and hands it to the
// farm. The EDL must be locked; drafts and approved documents are refused so
// a render can never reference a program that might still change. A farm
// submission failure leaves the job recorded as failed and retryable.
func (o *Orchestrator) Submit(ctx context.Context, sessionID string, format Format) (*Job, error) {
	doc, err := o.store.LockedEDL(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	job := NewJob(sessionID, doc.Version, format, o.now().UTC())
	if err := o.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	o.logger.Info("render job created",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSessionID, sessionID),
		logging.String("format", string(format)))

	farmJobID, err := o.farm.Submit(ctx, SubmitRequest{
		JobID:      job.ID,
		SessionID:  sessionID,
		Format:     format,
		Aspect:     format.AspectRatio(),
		EDLVersion: doc.Version,
		EDL:        doc,
	})
	if err != nil {
		job.Error = err.Error()
		if terr := job.ApplyTransition(StatusFailed, o.now().UTC()); terr == nil {
			if serr := o.store.SaveJob(ctx, job, StatusQueued); serr != nil {
				o.logger.Error("failed to record submission failure",
					logging.String(logging.FieldJobID, job.ID), logging.Error(serr))
			}
		}
		return job, err
	}

	job.FarmJobID = farmJobID
	job.UpdatedAt = o.now().UTC()
	if err := o.store.SaveJob(ctx, job, StatusQueued); err != nil {
		return nil, err
	}
	o.logger.Info("render job submitted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("farm_job_id", farmJobID))
	return job, nil
}

// Refresh polls the farm once and folds its report into the stored job.
// Terminal jobs are returned untouched.
func (o *Orchestrator) Refresh(ctx context.Context, jobID string) (*Job, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return job, nil
	}
	if job.FarmJobID == "" {
		return job, nil
	}

	report, err := o.farm.Status(ctx, job.FarmJobID)
	if err != nil {
		// A poll failure is not a job failure; the next tick retries.
		o.logger.Warn("farm status poll failed",
			logging.String(logging.FieldJobID, job.ID), logging.Error(err))
		return job, nil
	}
	return o.applyReport(ctx, job, report)
}

func (o *Orchestrator) applyReport(ctx context.Context, job *Job, report StatusReport) (*Job, error) {
	expect := job.Status
	now := o.now().UTC()
	changed := false

	switch report.State {
	case "queued":
		// Still waiting; nothing to fold in.
	case "processing", "running":
		if job.Status == StatusQueued {
			if err := job.ApplyTransition(StatusProcessing, now); err != nil {
				return nil, err
			}
			changed = true
		}
	case "completed":
		if job.Status == StatusQueued {
			if err := job.ApplyTransition(StatusProcessing, now); err != nil {
				return nil, err
			}
		}
		job.OutputURL = report.OutputURL
		job.OutputThumbnailURL = report.OutputThumbnailURL
		job.OutputSubtitlesURL = report.OutputSubtitlesURL
		job.DurationMs = report.DurationMs
		job.FileSizeBytes = report.FileSizeBytes
		job.Resolution = report.Resolution
		job.Fps = report.Fps
		job.RenderDurationMs = report.RenderDurationMs
		if err := job.ApplyTransition(StatusCompleted, now); err != nil {
			return nil, err
		}
		changed = true
	case "failed":
		job.Error = report.Error
		if err := job.ApplyTransition(StatusFailed, now); err != nil {
			return nil, err
		}
		changed = true
	default:
		o.logger.Warn("unknown farm state",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("state", report.State))
	}

	before := job.Progress
	job.SetProgress(report.Progress, now)
	if job.Progress != before {
		changed = true
	}

	if !changed {
		return job, nil
	}
	if err := o.store.SaveJob(ctx, job, expect); err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		o.logger.Info("render job settled",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("status", string(job.Status)))
	}
	return job, nil
}

// Watch polls the farm until the job settles, the context is cancelled, or an
// unrecoverable store error occurs. The onUpdate callback fires after every
// poll with the current job state.
func (o *Orchestrator) Watch(ctx context.Context, jobID string, onUpdate func(*Job)) (*Job, error) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		job, err := o.Refresh(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if onUpdate != nil {
			onUpdate(job)
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Retry resubmits a failed job. Only failed jobs are retryable; completed and
// cancelled jobs stay settled.
func (o *Orchestrator) Retry(ctx context.Context, jobID string) (*Job, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.CanRetry() {
		return nil, services.Wrap(services.ErrConflict, "render", "retry",
			fmt.Sprintf("job %s is %s; only failed jobs can be retried", jobID, job.Status), nil)
	}

	doc, err := o.store.LockedEDL(ctx, job.SessionID)
	if err != nil {
		return nil, err
	}

	if err := job.ApplyTransition(StatusQueued, o.now().UTC()); err != nil {
		return nil, err
	}
	if err := o.store.SaveJob(ctx, job, StatusFailed); err != nil {
		return nil, err
	}
	o.logger.Info("render job requeued",
		logging.String(logging.FieldJobID, job.ID),
		logging.Int("attempt", job.Attempts))

	farmJobID, err := o.farm.Submit(ctx, SubmitRequest{
		JobID:      job.ID,
		SessionID:  job.SessionID,
		Format:     job.Format,
		Aspect:     job.Format.AspectRatio(),
		EDLVersion: job.EDLVersion,
		EDL:        doc,
	})
	if err != nil {
		job.Error = err.Error()
		if terr := job.ApplyTransition(StatusFailed, o.now().UTC()); terr == nil {
			if serr := o.store.SaveJob(ctx, job, StatusQueued); serr != nil {
				o.logger.Error("failed to record retry failure",
					logging.String(logging.FieldJobID, job.ID), logging.Error(serr))
			}
		}
		return job, err
	}

	job.FarmJobID = farmJobID
	job.UpdatedAt = o.now().UTC()
	if err := o.store.SaveJob(ctx, job, StatusQueued); err != nil {
		return nil, err
	}
	return job, nil
}

// Cancel stops a queued or processing job, telling the farm first when the
// job already reached it.
func (o *Orchestrator) Cancel(ctx context.Context, jobID string) (*Job, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.CanCancel() {
		return nil, services.Wrap(services.ErrConflict, "render", "cancel",
			fmt.Sprintf("job %s is %s; only queued or processing jobs can be cancelled", jobID, job.Status), nil)
	}

	if job.FarmJobID != "" {
		if err := o.farm.Cancel(ctx, job.FarmJobID); err != nil {
			return nil, err
		}
	}

	expect := job.Status
	if err := job.ApplyTransition(StatusCancelled, o.now().UTC()); err != nil {
		return nil, err
	}
	if err := o.store.SaveJob(ctx, job, expect); err != nil {
		return nil, err
	}
	o.logger.Info("render job cancelled", logging.String(logging.FieldJobID, job.ID))
	return job, nil
}

// JobsForSession lists a session's render jobs, newest first.
func (o *Orchestrator) JobsForSession(ctx context.Context, sessionID string) ([]*Job, error) {
	return o.store.ListJobsForSession(ctx, sessionID)
}
