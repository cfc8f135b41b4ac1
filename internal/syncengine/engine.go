package syncengine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cutroom/internal/audio"
	"cutroom/internal/logging"
	"cutroom/internal/media"
	"cutroom/internal/services"
)

// SessionStore is the persistence surface the engine needs. Implemented by
// *store.Store.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*media.Session, error)
	UpdateSessionStatus(ctx context.Context, id string, from, to media.SessionStatus) error
	SaveSyncResults(ctx context.Context, session *media.Session) error
}

// MasterSelector scores downloaded audio and picks the reference camera.
// Implemented by *audio.Selector.
type MasterSelector interface {
	SelectMaster(ctx context.Context, files map[media.Camera]string, prior media.Camera) (media.Camera, []audio.CameraScore)
}

// Result summarizes one sync run.
type Result struct {
	SessionID    string
	MasterCamera media.Camera
	Results      map[media.Camera]media.SyncResult
	AllReliable  bool
}

// Engine runs offset detection for recording sessions.
type Engine struct {
	store       SessionStore
	selector    MasterSelector
	correlator  Correlator
	downloader  Downloader
	workDir     string
	maxParallel int
	logger      *slog.Logger
}

// Options configures a sync Engine.
type Options struct {
	Store       SessionStore
	Selector    MasterSelector
	Correlator  Correlator
	Downloader  Downloader
	WorkDir     string
	MaxParallel int
	Logger      *slog.Logger
}

// New builds an Engine.
func New(opts Options) *Engine {
	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:       opts.Store,
		selector:    opts.Selector,
		correlator:  opts.Correlator,
		downloader:  opts.Downloader,
		workDir:     opts.WorkDir,
		maxParallel: maxParallel,
		logger:      logging.NewComponentLogger(logger, "sync-engine"),
	}
}

// DetectOffsets runs the full sync pass for a session: claim it, download
// every camera's audio into a scoped workspace, pick the master, correlate
// the rest against it, and persist results with the session in needs-review.
// A single camera's failure never aborts the run; a top-level failure reverts
// the session to draft.
func (e *Engine) DetectOffsets(ctx context.Context, sessionID string, masterOverride media.Camera) (*Result, error) {
	ctx = services.WithSessionID(ctx, sessionID)

	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "sync-engine", "detect-offsets", "", err)
	}
	if masterOverride != "" {
		if _, ok := session.Assets[masterOverride]; !ok {
			return nil, services.Wrap(services.ErrValidation, "sync-engine", "detect-offsets",
				fmt.Sprintf("master camera %s has no asset in session %s", masterOverride, sessionID), nil)
		}
	}

	if err := e.store.UpdateSessionStatus(ctx, sessionID, media.StatusDraft, media.StatusSyncing); err != nil {
		return nil, err
	}

	result, err := e.run(ctx, session, masterOverride)
	if err != nil {
		// Top-level failure: hand the session back for another attempt.
		if revertErr := e.store.UpdateSessionStatus(ctx, sessionID, media.StatusSyncing, media.StatusDraft); revertErr != nil {
			e.logger.Error("failed to revert session to draft",
				logging.String(logging.FieldSessionID, sessionID), logging.Error(revertErr))
		}
		return nil, err
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context, session *media.Session, masterOverride media.Camera) (*Result, error) {
	workspace := filepath.Join(e.workDir, fmt.Sprintf("sync-%s-%d", session.ID, time.Now().UnixNano()))
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create sync workspace: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			e.logger.Warn("failed to clean sync workspace",
				logging.String("workspace", workspace), logging.Error(err))
		}
	}()

	files, err := e.downloadAll(ctx, session, workspace)
	if err != nil {
		return nil, err
	}

	master := masterOverride
	if master == "" {
		prior := session.MasterCamera
		master, _ = e.selector.SelectMaster(ctx, files, prior)
	}
	masterPath, ok := files[master]
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "sync-engine", "detect-offsets",
			fmt.Sprintf("master camera %s audio unavailable", master), nil)
	}
	e.logger.Info("master camera selected",
		logging.String(logging.FieldSessionID, session.ID),
		logging.String(logging.FieldCamera, string(master)))

	results := e.correlateAll(ctx, session, master, masterPath, files)

	session.MasterCamera = master
	session.SyncResults = results
	session.AllReliable = media.AllReliable(results)
	session.Status = media.StatusNeedsReview
	session.OperatorStatus = media.OperatorPending
	if err := e.store.SaveSyncResults(ctx, session); err != nil {
		return nil, err
	}

	e.logger.Info("sync complete",
		logging.String(logging.FieldSessionID, session.ID),
		logging.Bool("all_reliable", session.AllReliable))

	return &Result{
		SessionID:    session.ID,
		MasterCamera: master,
		Results:      results,
		AllReliable:  session.AllReliable,
	}, nil
}

// downloadAll fetches every camera's audio with bounded parallelism. A failed
// download removes the camera from the working set; correlation later records
// the failure per camera.
func (e *Engine) downloadAll(ctx context.Context, session *media.Session, workspace string) (map[media.Camera]string, error) {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		files = make(map[media.Camera]string, len(session.Assets))
		errs  = make(map[media.Camera]error)
	)
	sem := make(chan struct{}, e.maxParallel)

	for cam, asset := range session.Assets {
		wg.Add(1)
		go func(cam media.Camera, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			dest := filepath.Join(workspace, fmt.Sprintf("camera-%s.wav", cam))
			if err := e.downloader.Download(ctx, url, dest); err != nil {
				e.logger.Warn("audio download failed",
					logging.String(logging.FieldSessionID, session.ID),
					logging.String(logging.FieldCamera, string(cam)),
					logging.Error(err))
				mu.Lock()
				errs[cam] = err
				mu.Unlock()
				return
			}
			mu.Lock()
			files[cam] = dest
			mu.Unlock()
		}(cam, asset.BestAudioURL())
	}
	wg.Wait()

	if len(files) == 0 {
		return nil, services.Wrap(services.ErrTransient, "sync-engine", "download",
			fmt.Sprintf("no camera audio could be downloaded for session %s", session.ID), nil)
	}
	return files, nil
}

// correlateAll runs correlation for every non-master camera with bounded
// parallelism. Per-camera failures record a zero-confidence result and the
// batch continues.
func (e *Engine) correlateAll(ctx context.Context, session *media.Session, master media.Camera, masterPath string, files map[media.Camera]string) map[media.Camera]media.SyncResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[media.Camera]media.SyncResult, len(session.Assets))
	)
	sem := make(chan struct{}, e.maxParallel)

	// The master's offset is by definition zero with perfect confidence.
	results[master] = media.SyncResult{
		Camera:         master,
		OffsetMs:       0,
		Confidence:     100,
		Classification: media.ClassLooksGood,
	}

	for cam := range session.Assets {
		if cam == master {
			continue
		}
		wg.Add(1)
		go func(cam media.Camera) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := e.correlateOne(ctx, session.ID, cam, masterPath, files[cam])
			mu.Lock()
			results[cam] = result
			mu.Unlock()
		}(cam)
	}
	wg.Wait()
	return results
}

func (e *Engine) correlateOne(ctx context.Context, sessionID string, cam media.Camera, masterPath, comparisonPath string) media.SyncResult {
	failed := func(err error) media.SyncResult {
		e.logger.Error("camera sync failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.String(logging.FieldCamera, string(cam)),
			logging.Error(err))
		return media.SyncResult{
			Camera:         cam,
			OffsetMs:       0,
			Confidence:     0,
			Classification: media.ClassNeedsManual,
			Error:          err.Error(),
		}
	}

	if comparisonPath == "" {
		return failed(services.Wrap(services.ErrTransient, "sync-engine", "correlate",
			fmt.Sprintf("camera %s audio was not downloaded", cam), nil))
	}

	offset, err := e.correlator.Correlate(ctx, masterPath, comparisonPath)
	if err != nil {
		return failed(err)
	}

	result := classify(offset, cam)
	e.logger.Info("camera correlated",
		logging.String(logging.FieldSessionID, sessionID),
		logging.String(logging.FieldCamera, string(cam)),
		logging.Int64("offset_ms", result.OffsetMs),
		logging.Float64("confidence", result.Confidence),
		logging.String("classification", string(result.Classification)))
	return result
}
