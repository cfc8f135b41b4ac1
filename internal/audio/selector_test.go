package audio_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cutroom/internal/audio"
	"cutroom/internal/media"
)

// metricsExecutor serves per-path volumedetect output keyed on the input file.
type metricsExecutor struct {
	byPath map[string]audio.Metrics
}

func (m *metricsExecutor) Run(_ context.Context, _ string, args ...string) (string, string, error) {
	for path, metrics := range m.byPath {
		for _, arg := range args {
			if arg == path || arg == "amovie="+path+",volumedetect" {
				out := fmt.Sprintf("mean_volume: %.1f dB\nmax_volume: %.1f dB", metrics.RMSLevelDb, metrics.PeakLevelDb)
				return "", out, nil
			}
		}
	}
	return "", "", nil
}

func newSelector(byPath map[string]audio.Metrics) *audio.Selector {
	meter := audio.NewMeter(&metricsExecutor{byPath: byPath}, "ffprobe", "ffmpeg", time.Minute, nil)
	return audio.NewSelector(meter, nil)
}

func TestSelectMasterPicksBestAudio(t *testing.T) {
	selector := newSelector(map[string]audio.Metrics{
		"/tmp/a.wav": {RMSLevelDb: -35, PeakLevelDb: -18},
		"/tmp/b.wav": {RMSLevelDb: -16, PeakLevelDb: -6},
	})
	files := map[media.Camera]string{
		media.CameraA: "/tmp/a.wav",
		media.CameraB: "/tmp/b.wav",
	}

	master, scores := selector.SelectMaster(context.Background(), files, "")
	if master != media.CameraB {
		t.Fatalf("master = %q, want B", master)
	}
	if len(scores) != 2 {
		t.Fatalf("scores = %+v", scores)
	}
}

func TestSelectMasterPrefersPriorOnNearTie(t *testing.T) {
	// Identical audio on both cameras: scores tie exactly, so the prior
	// anchor must win.
	selector := newSelector(map[string]audio.Metrics{
		"/tmp/a.wav": {RMSLevelDb: -16, PeakLevelDb: -6},
		"/tmp/b.wav": {RMSLevelDb: -16, PeakLevelDb: -6},
	})
	files := map[media.Camera]string{
		media.CameraA: "/tmp/a.wav",
		media.CameraB: "/tmp/b.wav",
	}

	master, _ := selector.SelectMaster(context.Background(), files, media.CameraB)
	if master != media.CameraB {
		t.Fatalf("master = %q, want prior B", master)
	}
}

func TestSelectMasterClearWinnerBeatsPrior(t *testing.T) {
	selector := newSelector(map[string]audio.Metrics{
		"/tmp/a.wav": {RMSLevelDb: -16, PeakLevelDb: -6},
		"/tmp/b.wav": {RMSLevelDb: -40, PeakLevelDb: -20},
	})
	files := map[media.Camera]string{
		media.CameraA: "/tmp/a.wav",
		media.CameraB: "/tmp/b.wav",
	}

	master, _ := selector.SelectMaster(context.Background(), files, media.CameraB)
	if master != media.CameraA {
		t.Fatalf("master = %q, want A despite prior B", master)
	}
}

func TestSelectMasterFallsBackWithoutScorableCameras(t *testing.T) {
	selector := newSelector(nil)

	master, scores := selector.SelectMaster(context.Background(), map[media.Camera]string{}, media.CameraC)
	if master != media.CameraC {
		t.Fatalf("master = %q, want prior C", master)
	}
	if len(scores) != 0 {
		t.Fatalf("scores = %+v", scores)
	}

	master, _ = selector.SelectMaster(context.Background(), map[media.Camera]string{}, "")
	if master != media.CameraA {
		t.Fatalf("master = %q, want default A", master)
	}
}
