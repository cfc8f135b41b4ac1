// Package timeline implements interactive program editing on an unlocked EDL:
// nudging cut boundaries, splitting at the playhead, camera reassignment, and
// confidence-driven bulk review, with explicit save and reset against the
// persisted document.
package timeline
