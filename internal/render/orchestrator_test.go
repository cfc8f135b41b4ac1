package render_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cutroom/internal/edl"
	"cutroom/internal/render"
	"cutroom/internal/services"
	"cutroom/internal/store"
)

type memoryStore struct {
	mu   sync.Mutex
	edls map[string]*edl.Document
	jobs map[string]*render.Job
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		edls: make(map[string]*edl.Document),
		jobs: make(map[string]*render.Job),
	}
}

func (m *memoryStore) LockedEDL(_ context.Context, sessionID string) (*edl.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.edls[sessionID]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "store", "get-edl", "no edl for "+sessionID, nil)
	}
	if doc.Status != edl.StatusLocked {
		return nil, services.Wrap(services.ErrConflict, "store", "locked-edl",
			"edl is "+string(doc.Status), store.ErrEDLNotLocked)
	}
	return doc, nil
}

func (m *memoryStore) CreateJob(_ context.Context, job *render.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memoryStore) GetJob(_ context.Context, id string) (*render.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "store", "get-job", "job "+id, nil)
	}
	copied := *job
	return &copied, nil
}

func (m *memoryStore) SaveJob(_ context.Context, job *render.Job, expect render.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.jobs[job.ID]
	if !ok || current.Status != expect {
		return services.Wrap(services.ErrConflict, "store", "save-job", "job changed", store.ErrStale)
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memoryStore) ListJobsForSession(_ context.Context, sessionID string) ([]*render.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*render.Job
	for _, job := range m.jobs {
		if job.SessionID == sessionID {
			copied := *job
			jobs = append(jobs, &copied)
		}
	}
	return jobs, nil
}

type fakeFarm struct {
	mu        sync.Mutex
	submitErr error
	reports   map[string]render.StatusReport
	cancelled []string
	submits   int
}

func (f *fakeFarm) Submit(_ context.Context, req render.SubmitRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "farm-" + req.JobID, nil
}

func (f *fakeFarm) Status(_ context.Context, farmJobID string) (render.StatusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[farmJobID]
	if !ok {
		return render.StatusReport{FarmJobID: farmJobID, State: "queued"}, nil
	}
	return report, nil
}

func (f *fakeFarm) Cancel(_ context.Context, farmJobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, farmJobID)
	return nil
}

func lockedStore(sessionID string) *memoryStore {
	ms := newMemoryStore()
	ms.edls[sessionID] = &edl.Document{
		SchemaVersion: edl.SchemaVersion,
		SessionID:     sessionID,
		Status:        edl.StatusLocked,
		Version:       4,
		DurationMs:    60000,
	}
	return ms
}

func TestSubmitRequiresLockedEDL(t *testing.T) {
	ms := newMemoryStore()
	ms.edls["svc-draft"] = &edl.Document{SessionID: "svc-draft", Status: edl.StatusDraft, Version: 1}
	orch := render.NewOrchestrator(ms, &fakeFarm{}, time.Millisecond, nil)

	if _, err := orch.Submit(context.Background(), "svc-draft", render.FormatFull); !errors.Is(err, store.ErrEDLNotLocked) {
		t.Fatalf("error = %v, want not locked", err)
	}
	if len(ms.jobs) != 0 {
		t.Fatal("job created against unlocked edl")
	}
}

func TestSubmitHappyPath(t *testing.T) {
	ms := lockedStore("svc-render")
	farm := &fakeFarm{}
	orch := render.NewOrchestrator(ms, farm, time.Millisecond, nil)

	job, err := orch.Submit(context.Background(), "svc-render", render.FormatShort)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != render.StatusQueued || job.FarmJobID == "" {
		t.Fatalf("job = %+v", job)
	}
	if job.EDLVersion != 4 {
		t.Fatalf("edl version = %d", job.EDLVersion)
	}
}

func TestSubmitFarmFailureLeavesRetryableJob(t *testing.T) {
	ms := lockedStore("svc-fail")
	farm := &fakeFarm{submitErr: errors.New("farm unavailable")}
	orch := render.NewOrchestrator(ms, farm, time.Millisecond, nil)

	job, err := orch.Submit(context.Background(), "svc-fail", render.FormatFull)
	if err == nil {
		t.Fatal("expected submission error")
	}
	if job == nil || job.Status != render.StatusFailed {
		t.Fatalf("job = %+v", job)
	}
	stored := ms.jobs[job.ID]
	if stored.Status != render.StatusFailed || stored.Error == "" {
		t.Fatalf("stored job = %+v", stored)
	}
	if !stored.CanRetry() {
		t.Fatal("failed submission should be retryable")
	}
}

func TestRefreshFoldsFarmReport(t *testing.T) {
	ms := lockedStore("svc-poll")
	farm := &fakeFarm{reports: map[string]render.StatusReport{}}
	orch := render.NewOrchestrator(ms, farm, time.Millisecond, nil)

	job, err := orch.Submit(context.Background(), "svc-poll", render.FormatFull)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	farm.mu.Lock()
	farm.reports[job.FarmJobID] = render.StatusReport{State: "processing", Progress: 40}
	farm.mu.Unlock()

	refreshed, err := orch.Refresh(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.Status != render.StatusProcessing || refreshed.Progress != 40 {
		t.Fatalf("refreshed = %+v", refreshed)
	}

	farm.mu.Lock()
	farm.reports[job.FarmJobID] = render.StatusReport{
		State:              "completed",
		Progress:           100,
		OutputURL:          "https://cdn.example.com/out.mp4",
		OutputThumbnailURL: "https://cdn.example.com/out.jpg",
		OutputSubtitlesURL: "https://cdn.example.com/out.vtt",
		DurationMs:         60000,
		FileSizeBytes:      123456789,
		Resolution:         "1920x1080",
		Fps:                29.97,
		RenderDurationMs:   4500,
	}
	farm.mu.Unlock()

	final, err := orch.Refresh(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if final.Status != render.StatusCompleted || final.OutputURL == "" {
		t.Fatalf("final = %+v", final)
	}
	if final.OutputThumbnailURL != "https://cdn.example.com/out.jpg" || final.OutputSubtitlesURL != "https://cdn.example.com/out.vtt" {
		t.Fatalf("artifact urls not folded: %+v", final)
	}
	if final.DurationMs != 60000 || final.FileSizeBytes != 123456789 || final.Resolution != "1920x1080" {
		t.Fatalf("media metrics not folded: %+v", final)
	}
	if final.Fps != 29.97 || final.RenderDurationMs != 4500 {
		t.Fatalf("media metrics not folded: %+v", final)
	}

	// Terminal jobs are left alone on later refreshes.
	again, err := orch.Refresh(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Refresh terminal: %v", err)
	}
	if again.Status != render.StatusCompleted {
		t.Fatalf("terminal job changed: %+v", again)
	}
}

func TestWatchRunsUntilSettled(t *testing.T) {
	ms := lockedStore("svc-watch")
	farm := &fakeFarm{reports: map[string]render.StatusReport{}}
	orch := render.NewOrchestrator(ms, farm, time.Millisecond, nil)

	job, err := orch.Submit(context.Background(), "svc-watch", render.FormatFull)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	farm.mu.Lock()
	farm.reports[job.FarmJobID] = render.StatusReport{State: "failed", Error: "encoder crashed"}
	farm.mu.Unlock()

	updates := 0
	final, err := orch.Watch(context.Background(), job.ID, func(*render.Job) { updates++ })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if final.Status != render.StatusFailed || final.Error != "encoder crashed" {
		t.Fatalf("final = %+v", final)
	}
	if updates == 0 {
		t.Fatal("no updates delivered")
	}
}

func TestRetryOnlyFromFailed(t *testing.T) {
	ms := lockedStore("svc-retry")
	farm := &fakeFarm{}
	orch := render.NewOrchestrator(ms, farm, time.Millisecond, nil)

	job, err := orch.Submit(context.Background(), "svc-retry", render.FormatFull)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Queued jobs are not retryable.
	if _, err := orch.Retry(context.Background(), job.ID); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("retry queued error = %v, want conflict", err)
	}

	farm.mu.Lock()
	farm.reports = map[string]render.StatusReport{
		job.FarmJobID: {State: "failed", Error: "disk full"},
	}
	farm.mu.Unlock()
	if _, err := orch.Refresh(context.Background(), job.ID); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	retried, err := orch.Retry(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if retried.Status != render.StatusQueued || retried.Attempts != 2 {
		t.Fatalf("retried = %+v", retried)
	}
	if retried.Error != "" || retried.Progress != 0 {
		t.Fatalf("run state not reset: %+v", retried)
	}
}

func TestCancelQueuedAndProcessingOnly(t *testing.T) {
	ms := lockedStore("svc-cancel")
	farm := &fakeFarm{reports: map[string]render.StatusReport{}}
	orch := render.NewOrchestrator(ms, farm, time.Millisecond, nil)

	job, err := orch.Submit(context.Background(), "svc-cancel", render.FormatFull)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	cancelled, err := orch.Cancel(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != render.StatusCancelled {
		t.Fatalf("status = %q", cancelled.Status)
	}
	if len(farm.cancelled) != 1 || farm.cancelled[0] != job.FarmJobID {
		t.Fatalf("farm cancels = %v", farm.cancelled)
	}

	// Terminal now; a second cancel is a conflict.
	if _, err := orch.Cancel(context.Background(), job.ID); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("second cancel error = %v, want conflict", err)
	}
}
