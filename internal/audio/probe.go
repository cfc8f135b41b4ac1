package audio

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"cutroom/internal/logging"
)

// Metrics are measured loudness characteristics of one audio track.
type Metrics struct {
	RMSLevelDb   float64
	PeakLevelDb  float64
	NoiseFloorDb float64
}

// Measurement defaults when no tool produced parseable output. Scoring must
// degrade gracefully instead of failing the sync run.
const (
	DefaultRMSDb  = -40
	DefaultPeakDb = -20

	// noiseFloorOffsetDb estimates the floor below the mean level. It is a
	// fixed heuristic; volumedetect does not measure the floor directly.
	noiseFloorOffsetDb = 20
)

var (
	meanVolumeRe = regexp.MustCompile(`mean_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
	maxVolumeRe  = regexp.MustCompile(`max_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
)

// Meter measures audio loudness by running volumedetect through ffprobe,
// falling back to ffmpeg when ffprobe is unavailable or fails.
type Meter struct {
	executor Executor
	ffprobe  string
	ffmpeg   string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewMeter builds a Meter. Empty binary names fall back to the tools on PATH.
func NewMeter(executor Executor, ffprobe, ffmpeg string, timeout time.Duration, logger *slog.Logger) *Meter {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Meter{
		executor: executor,
		ffprobe:  ffprobe,
		ffmpeg:   ffmpeg,
		timeout:  timeout,
		logger:   logging.NewComponentLogger(logger, "audio-meter"),
	}
}

// Measure returns loudness metrics for the audio at path. When neither tool
// produces parseable output it returns conservative defaults, never an error;
// callers only need a relative quality ranking.
func (m *Meter) Measure(ctx context.Context, path string) Metrics {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	output, err := m.runFFprobe(ctx, path)
	if err != nil || !hasVolumeData(output) {
		if err != nil {
			m.logger.Debug("ffprobe volumedetect failed, trying ffmpeg",
				logging.String("path", path), logging.Error(err))
		}
		output, err = m.runFFmpeg(ctx, path)
		if err != nil {
			m.logger.Warn("volumedetect unavailable, using default metrics",
				logging.String("path", path), logging.Error(err))
			output = ""
		}
	}
	return parseMetrics(output)
}

func (m *Meter) runFFprobe(ctx context.Context, path string) (string, error) {
	stdout, stderr, err := m.executor.Run(ctx, m.ffprobe,
		"-hide_banner",
		"-f", "lavfi",
		"-i", "amovie="+path+",volumedetect",
		"-f", "null", "-")
	return stdout + "\n" + stderr, err
}

func (m *Meter) runFFmpeg(ctx context.Context, path string) (string, error) {
	stdout, stderr, err := m.executor.Run(ctx, m.ffmpeg,
		"-hide_banner", "-nostats",
		"-i", path,
		"-af", "volumedetect",
		"-f", "null", "-")
	return stdout + "\n" + stderr, err
}

func hasVolumeData(output string) bool {
	return meanVolumeRe.MatchString(output)
}

func parseMetrics(output string) Metrics {
	metrics := Metrics{RMSLevelDb: DefaultRMSDb, PeakLevelDb: DefaultPeakDb}
	if match := meanVolumeRe.FindStringSubmatch(output); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			metrics.RMSLevelDb = value
		}
	}
	if match := maxVolumeRe.FindStringSubmatch(output); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			metrics.PeakLevelDb = value
		}
	}
	metrics.NoiseFloorDb = metrics.RMSLevelDb - noiseFloorOffsetDb
	return metrics
}
