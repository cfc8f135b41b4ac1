package audio

import (
	"context"
	"log/slog"
	"sort"

	"cutroom/internal/logging"
	"cutroom/internal/media"
)

// CameraScore reports one camera's measured quality.
type CameraScore struct {
	Camera  media.Camera
	Metrics Metrics
	Score   float64
}

// nearTieFraction is the band within which the prior anchor wins. Re-running
// sync on the same session should not flip the master over measurement noise.
const nearTieFraction = 0.05

// Selector picks the master camera by audio quality.
type Selector struct {
	meter  *Meter
	logger *slog.Logger
}

// NewSelector builds a Selector on top of a Meter.
func NewSelector(meter *Meter, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{meter: meter, logger: logging.NewComponentLogger(logger, "master-selector")}
}

// SelectMaster scores each camera's local audio file and returns the best
// one. Cameras whose files are missing are skipped, not scored as zero. On a
// near-tie the prior anchor is preferred; with nothing scorable the prior
// anchor (or camera A) wins by default.
func (s *Selector) SelectMaster(ctx context.Context, files map[media.Camera]string, prior media.Camera) (media.Camera, []CameraScore) {
	scores := make([]CameraScore, 0, len(files))
	for _, cam := range sortedCameras(files) {
		path := files[cam]
		if path == "" {
			continue
		}
		metrics := s.meter.Measure(ctx, path)
		score := ComputeScore(metrics)
		scores = append(scores, CameraScore{Camera: cam, Metrics: metrics, Score: score})
		s.logger.Debug("camera audio scored",
			logging.String(logging.FieldCamera, string(cam)),
			logging.Float64("score", score),
			logging.Float64("rms_db", metrics.RMSLevelDb),
			logging.Float64("peak_db", metrics.PeakLevelDb))
	}

	if len(scores) == 0 {
		if prior != "" {
			return prior, scores
		}
		return media.CameraA, scores
	}

	best := scores[0]
	for _, candidate := range scores[1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	if prior != "" && prior != best.Camera {
		for _, candidate := range scores {
			if candidate.Camera != prior {
				continue
			}
			if best.Score-candidate.Score < nearTieFraction*best.Score {
				s.logger.Info("keeping prior master on near-tie",
					logging.String(logging.FieldCamera, string(prior)),
					logging.Float64("prior_score", candidate.Score),
					logging.Float64("best_score", best.Score))
				return prior, scores
			}
		}
	}
	return best.Camera, scores
}

func sortedCameras(files map[media.Camera]string) []media.Camera {
	cams := make([]media.Camera, 0, len(files))
	for cam := range files {
		cams = append(cams, cam)
	}
	sort.Slice(cams, func(i, j int) bool { return cams[i] < cams[j] })
	return cams
}
