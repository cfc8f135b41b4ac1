package timeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cutroom/internal/edl"
	"cutroom/internal/media"
	"cutroom/internal/services"
)

// ProgramStore persists edited program tracks. Implemented by *store.Store.
type ProgramStore interface {
	ReplaceProgram(ctx context.Context, sessionID string, program []edl.Cut, chapters []edl.Chapter) (*edl.Document, error)
}

// Editor holds an in-memory working copy of a program track. Edits accumulate
// locally until Save pushes them through validation into the store, or Reset
// throws them away.
type Editor struct {
	sessionID  string
	durationMs int64
	working    []edl.Cut
	saved      []edl.Cut
	selectedID string
	dirty      bool
}

// NewEditor opens a working copy of the document's program. Drafts and
// approved documents stay editable; locked documents are frozen.
func NewEditor(doc *edl.Document) (*Editor, error) {
	if doc.Status == edl.StatusLocked {
		return nil, services.Wrap(services.ErrConflict, "timeline", "open",
			fmt.Sprintf("edl for session %s is locked; no further edits are allowed", doc.SessionID), nil)
	}
	return &Editor{
		sessionID:  doc.SessionID,
		durationMs: doc.DurationMs,
		working:    cloneCuts(doc.Tracks.Program),
		saved:      cloneCuts(doc.Tracks.Program),
	}, nil
}

// Cuts returns the working program track.
func (e *Editor) Cuts() []edl.Cut {
	return cloneCuts(e.working)
}

// SelectedID returns the currently selected cut id, if any.
func (e *Editor) SelectedID() string {
	return e.selectedID
}

// Select marks a cut as the target for subsequent edits.
func (e *Editor) Select(cutID string) error {
	if _, err := e.find(cutID); err != nil {
		return err
	}
	e.selectedID = cutID
	return nil
}

// HasUnsavedChanges reports whether the working copy differs from the last
// saved state.
func (e *Editor) HasUnsavedChanges() bool {
	return e.dirty
}

// NudgeStart moves a cut's start boundary by deltaMs, clamped to the
// timeline. When the start would crowd the end below the minimum cut
// duration, the end moves forward to keep it, up to the session duration.
func (e *Editor) NudgeStart(cutID string, deltaMs int64) error {
	idx, err := e.find(cutID)
	if err != nil {
		return err
	}
	cut := &e.working[idx]
	start := cut.StartMs + deltaMs
	if start < 0 {
		start = 0
	}
	if start > e.durationMs {
		start = e.durationMs
	}
	end := cut.EndMs
	if end < start+edl.MinCutDurationMs {
		end = start + edl.MinCutDurationMs
		if end > e.durationMs {
			end = e.durationMs
			start = end - edl.MinCutDurationMs
		}
	}
	if start != cut.StartMs || end != cut.EndMs {
		cut.StartMs = start
		cut.EndMs = end
		e.markEdited(cut)
	}
	return nil
}

// NudgeEnd moves a cut's end boundary by deltaMs, clamped to the session
// duration and the minimum cut duration.
func (e *Editor) NudgeEnd(cutID string, deltaMs int64) error {
	idx, err := e.find(cutID)
	if err != nil {
		return err
	}
	cut := &e.working[idx]
	end := cut.EndMs + deltaMs
	if end > e.durationMs {
		end = e.durationMs
	}
	if end < cut.StartMs+edl.MinCutDurationMs {
		end = cut.StartMs + edl.MinCutDurationMs
	}
	if end != cut.EndMs {
		cut.EndMs = end
		e.markEdited(cut)
	}
	return nil
}

// SplitAt divides the cut under the playhead into two. The playhead must fall
// strictly inside a cut; the new half inherits the camera, reason, and
// confidence and drops in right after the original, preserving track order.
// Halves shorter than the minimum cut duration are caught by validation at
// save time.
func (e *Editor) SplitAt(playheadMs int64) error {
	idx := -1
	for i, cut := range e.working {
		if playheadMs > cut.StartMs && playheadMs < cut.EndMs {
			idx = i
			break
		}
	}
	if idx == -1 {
		return services.Wrap(services.ErrValidation, "timeline", "split",
			fmt.Sprintf("playhead %dms is not inside any cut", playheadMs), nil)
	}
	cut := e.working[idx]

	second := edl.Cut{
		ID:         "cut-" + uuid.NewString()[:8],
		StartMs:    playheadMs,
		EndMs:      cut.EndMs,
		Camera:     cut.Camera,
		Confidence: cut.Confidence,
		Reason:     cut.Reason,
	}
	e.working[idx].EndMs = playheadMs

	e.working = append(e.working, edl.Cut{})
	copy(e.working[idx+2:], e.working[idx+1:])
	e.working[idx+1] = second
	e.dirty = true
	return nil
}

// Delete removes a cut and clears the selection if it pointed at it.
func (e *Editor) Delete(cutID string) error {
	idx, err := e.find(cutID)
	if err != nil {
		return err
	}
	e.working = append(e.working[:idx], e.working[idx+1:]...)
	if e.selectedID == cutID {
		e.selectedID = ""
	}
	e.dirty = true
	return nil
}

// SetCamera reassigns a cut to a different camera angle.
func (e *Editor) SetCamera(cutID string, camera media.Camera) error {
	if !camera.Valid() {
		return services.Wrap(services.ErrValidation, "timeline", "set-camera",
			fmt.Sprintf("unknown camera %q", camera), nil)
	}
	idx, err := e.find(cutID)
	if err != nil {
		return err
	}
	cut := &e.working[idx]
	if cut.Camera != camera {
		cut.Camera = camera
		e.markEdited(cut)
	}
	return nil
}

// BulkApproveHighConfidence marks every cut at or above the high-confidence
// threshold as operator-reviewed and returns how many were touched.
func (e *Editor) BulkApproveHighConfidence() int {
	approved := 0
	for i := range e.working {
		cut := &e.working[i]
		if cut.Confidence >= edl.HighConfidence && cut.Reason != edl.ReasonOperator {
			cut.Reason = edl.ReasonOperator
			approved++
		}
	}
	if approved > 0 {
		e.dirty = true
	}
	return approved
}

// SelectNextLowConfidence moves the selection to the next cut below the
// low-confidence threshold, cycling past the end of the track back to the
// start. Returns the selected cut id, or empty when no cut qualifies.
func (e *Editor) SelectNextLowConfidence() string {
	if len(e.working) == 0 {
		return ""
	}
	start := 0
	if e.selectedID != "" {
		for i, cut := range e.working {
			if cut.ID == e.selectedID {
				start = i + 1
				break
			}
		}
	}
	for offset := 0; offset < len(e.working); offset++ {
		cut := e.working[(start+offset)%len(e.working)]
		if cut.Confidence < edl.LowConfidence {
			e.selectedID = cut.ID
			return cut.ID
		}
	}
	return ""
}

// Save validates the working track and atomically persists it. On success the
// saved baseline advances and the editor is clean again.
func (e *Editor) Save(ctx context.Context, store ProgramStore) (*edl.Document, error) {
	if err := edl.ValidateProgram(e.working, e.durationMs); err != nil {
		return nil, err
	}
	doc, err := store.ReplaceProgram(ctx, e.sessionID, cloneCuts(e.working), nil)
	if err != nil {
		return nil, err
	}
	e.saved = cloneCuts(e.working)
	e.dirty = false
	return doc, nil
}

// Reset discards all unsaved edits, restoring the last saved state.
func (e *Editor) Reset() {
	e.working = cloneCuts(e.saved)
	e.selectedID = ""
	e.dirty = false
}

func (e *Editor) find(cutID string) (int, error) {
	for i, cut := range e.working {
		if cut.ID == cutID {
			return i, nil
		}
	}
	return 0, services.Wrap(services.ErrNotFound, "timeline", "find-cut",
		fmt.Sprintf("no cut %s in session %s", cutID, e.sessionID), nil)
}

func (e *Editor) markEdited(cut *edl.Cut) {
	cut.Reason = edl.ReasonOperator
	e.dirty = true
}

func cloneCuts(cuts []edl.Cut) []edl.Cut {
	out := make([]edl.Cut, len(cuts))
	copy(out, cuts)
	return out
}
