package audio

import "math"

// Scoring constants for speech content.
const (
	idealSpeechRMSDb = -16
	rmsPenaltyRange  = 24
	headroomFullDb   = 6
	snrFullDb        = 30
)

// ComputeScore reduces loudness metrics to a 0..1 quality score. The blend
// weights loudness accuracy highest, then headroom and signal-to-noise:
// 0.4*rms + 0.3*headroom + 0.3*snr. A peak at or above 0dB means clipping and
// zeroes the headroom term entirely.
func ComputeScore(metrics Metrics) float64 {
	rmsDiff := math.Abs(metrics.RMSLevelDb - idealSpeechRMSDb)
	rmsScore := math.Max(0, 1-rmsDiff/rmsPenaltyRange)

	var headroomScore float64
	if metrics.PeakLevelDb < 0 {
		headroomScore = math.Min(1, math.Abs(metrics.PeakLevelDb)/headroomFullDb)
	}

	snr := metrics.RMSLevelDb - metrics.NoiseFloorDb
	snrScore := math.Min(1, math.Max(0, snr/snrFullDb))

	score := 0.4*rmsScore + 0.3*headroomScore + 0.3*snrScore
	return math.Min(1, math.Max(0, score))
}
