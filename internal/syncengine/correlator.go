package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"time"

	"cutroom/internal/audio"
	"cutroom/internal/media"
	"cutroom/internal/services"
)

// Offset is the raw correlation result for one camera pair.
type Offset struct {
	OffsetMs   int64
	Confidence float64
}

// Correlator finds the time offset of one audio file within another.
type Correlator interface {
	Correlate(ctx context.Context, masterPath, comparisonPath string) (Offset, error)
}

// OffsetFinder shells out to the BBC audio-offset-finder CLI in JSON mode.
type OffsetFinder struct {
	executor audio.Executor
	binary   string
	timeout  time.Duration
}

// NewOffsetFinder builds a Correlator around the audio-offset-finder binary.
func NewOffsetFinder(executor audio.Executor, binary string, timeout time.Duration) *OffsetFinder {
	if binary == "" {
		binary = "audio-offset-finder"
	}
	return &OffsetFinder{executor: executor, binary: binary, timeout: timeout}
}

type offsetFinderOutput struct {
	Offset        float64 `json:"offset"`
	StandardScore float64 `json:"standard_score"`
}

// Correlate runs the correlation and parses the reported offset (seconds,
// signed) and standard score. A missing binary is reported as a distinct
// actionable error rather than a generic failure.
func (f *OffsetFinder) Correlate(ctx context.Context, masterPath, comparisonPath string) (Offset, error) {
	if _, err := exec.LookPath(f.binary); err != nil {
		return Offset{}, services.Wrap(services.ErrToolUnavailable, "sync-engine", "correlate",
			fmt.Sprintf("%s not installed; install with: pip install audio-offset-finder", f.binary), err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	stdout, stderr, err := f.executor.Run(ctx, f.binary,
		"--find-offset-of", comparisonPath,
		"--within", masterPath,
		"--json")
	if err != nil {
		return Offset{}, services.Wrap(services.ErrExternalTool, "sync-engine", "correlate",
			fmt.Sprintf("%s failed: %s", f.binary, firstLine(stderr)), err)
	}

	var parsed offsetFinderOutput
	if err := json.Unmarshal([]byte(stdout), &parsed); err != nil {
		return Offset{}, services.Wrap(services.ErrExternalTool, "sync-engine", "correlate",
			fmt.Sprintf("%s produced unparseable output", f.binary), err)
	}

	return Offset{
		OffsetMs:   int64(math.Round(parsed.Offset * 1000)),
		Confidence: parsed.StandardScore,
	}, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// classify pairs an Offset with its review bucket.
func classify(offset Offset, camera media.Camera) media.SyncResult {
	return media.SyncResult{
		Camera:         camera,
		OffsetMs:       offset.OffsetMs,
		Confidence:     offset.Confidence,
		Classification: media.ClassifyConfidence(offset.Confidence),
	}
}
