package edl

import (
	"fmt"
	"sort"

	"cutroom/internal/services"
)

// MinCutDurationMs is the shortest cut the editor will produce or accept.
const MinCutDurationMs = 100

// ValidateProgram checks a program track against the timeline invariants:
// every cut in bounds, at least MinCutDurationMs long, on a known camera, and
// the track sorted by start with no overlaps. Violations come back wrapped in
// ErrValidation with the offending cut named.
func ValidateProgram(cuts []Cut, durationMs int64) error {
	for i, cut := range cuts {
		if cut.ID == "" {
			return validationErr(fmt.Sprintf("cut at index %d has no id", i))
		}
		if !cut.Camera.Valid() {
			return validationErr(fmt.Sprintf("cut %s has unknown camera %q", cut.ID, cut.Camera))
		}
		if cut.StartMs < 0 {
			return validationErr(fmt.Sprintf("cut %s starts before 0 (%dms)", cut.ID, cut.StartMs))
		}
		if cut.EndMs > durationMs {
			return validationErr(fmt.Sprintf("cut %s ends past session duration (%dms > %dms)", cut.ID, cut.EndMs, durationMs))
		}
		if cut.DurationMs() < MinCutDurationMs {
			return validationErr(fmt.Sprintf("cut %s is %dms long; minimum is %dms", cut.ID, cut.DurationMs(), MinCutDurationMs))
		}
	}
	for i := 1; i < len(cuts); i++ {
		prev, cur := cuts[i-1], cuts[i]
		if cur.StartMs < prev.StartMs {
			return validationErr(fmt.Sprintf("cut %s is out of order after %s", cur.ID, prev.ID))
		}
		if cur.StartMs < prev.EndMs {
			return validationErr(fmt.Sprintf("cut %s overlaps %s (%dms < %dms)", cur.ID, prev.ID, cur.StartMs, prev.EndMs))
		}
	}
	return nil
}

func validationErr(msg string) error {
	return services.Wrap(services.ErrValidation, "edl", "validate-program", msg, nil)
}

// InsertionIndex returns where a cut starting at startMs belongs in a sorted
// program track.
func InsertionIndex(cuts []Cut, startMs int64) int {
	return sort.Search(len(cuts), func(i int) bool {
		return cuts[i].StartMs >= startMs
	})
}
