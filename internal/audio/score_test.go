package audio_test

import (
	"testing"

	"cutroom/internal/audio"
)

func TestComputeScoreCleanSpeech(t *testing.T) {
	score := audio.ComputeScore(audio.Metrics{RMSLevelDb: -16, PeakLevelDb: -6, NoiseFloorDb: -36})
	if score <= 0.8 || score > 1 {
		t.Fatalf("clean speech score = %v, want in (0.8, 1]", score)
	}
}

func TestComputeScoreClippedHasNoHeadroom(t *testing.T) {
	clipped := audio.ComputeScore(audio.Metrics{RMSLevelDb: -16, PeakLevelDb: 0, NoiseFloorDb: -36})
	clean := audio.ComputeScore(audio.Metrics{RMSLevelDb: -16, PeakLevelDb: -6, NoiseFloorDb: -36})
	if clipped >= 0.7 {
		t.Fatalf("clipped score = %v, want < 0.7", clipped)
	}
	if clipped >= clean {
		t.Fatalf("clipped %v not below clean %v", clipped, clean)
	}
}

func TestComputeScoreQuietAudio(t *testing.T) {
	score := audio.ComputeScore(audio.Metrics{RMSLevelDb: -40, PeakLevelDb: -20, NoiseFloorDb: -60})
	if score >= 0.6 {
		t.Fatalf("quiet score = %v, want < 0.6", score)
	}
}

func TestComputeScoreOrdering(t *testing.T) {
	clean := audio.ComputeScore(audio.Metrics{RMSLevelDb: -16, PeakLevelDb: -6, NoiseFloorDb: -36})
	noisy := audio.ComputeScore(audio.Metrics{RMSLevelDb: -16, PeakLevelDb: -6, NoiseFloorDb: -21})
	quiet := audio.ComputeScore(audio.Metrics{RMSLevelDb: -40, PeakLevelDb: -20, NoiseFloorDb: -60})
	clipped := audio.ComputeScore(audio.Metrics{RMSLevelDb: -6, PeakLevelDb: 0, NoiseFloorDb: -16})

	if !(clean > noisy && noisy > quiet && quiet > clipped) {
		t.Fatalf("ordering violated: clean=%v noisy=%v quiet=%v clipped=%v", clean, noisy, quiet, clipped)
	}
}

func TestComputeScoreMonotonicInSNR(t *testing.T) {
	prev := -1.0
	for floor := -16.0; floor >= -80; floor -= 4 {
		score := audio.ComputeScore(audio.Metrics{RMSLevelDb: -16, PeakLevelDb: -6, NoiseFloorDb: floor})
		if score < prev {
			t.Fatalf("score decreased as noise floor dropped: %v -> %v at floor %v", prev, score, floor)
		}
		prev = score
	}
}

func TestComputeScoreBounded(t *testing.T) {
	extremes := []audio.Metrics{
		{RMSLevelDb: -80, PeakLevelDb: 10, NoiseFloorDb: -80},
		{RMSLevelDb: 0, PeakLevelDb: -60, NoiseFloorDb: -200},
		{},
	}
	for _, m := range extremes {
		score := audio.ComputeScore(m)
		if score < 0 || score > 1 {
			t.Fatalf("score %v out of range for %+v", score, m)
		}
	}
}
