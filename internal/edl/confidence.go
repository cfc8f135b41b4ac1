package edl

// Cut confidence thresholds used by bulk review operations. These are on the
// normalized 0..1 scale, unlike the correlator's standard score.
const (
	HighConfidence = 0.8
	LowConfidence  = 0.5
)
