package media

// Classification buckets a correlation confidence score for the review UI.
type Classification string

const (
	ClassLooksGood       Classification = "looks-good"
	ClassReviewSuggested Classification = "review-suggested"
	ClassNeedsManual     Classification = "needs-manual-nudge"
)

// MinReliableScore is the confidence floor below which an offset cannot be
// trusted without an operator looking at it.
const MinReliableScore = 5.0

// ClassifyConfidence maps a correlation standard score to a review bucket.
// Scores of 10 and above rarely need attention; anything under 5 means the
// correlator found no convincing alignment.
func ClassifyConfidence(score float64) Classification {
	switch {
	case score >= 10:
		return ClassLooksGood
	case score >= MinReliableScore:
		return ClassReviewSuggested
	default:
		return ClassNeedsManual
	}
}

// AllReliable reports whether every result cleared the reliability floor.
func AllReliable(results map[Camera]SyncResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.Confidence < MinReliableScore {
			return false
		}
	}
	return true
}
