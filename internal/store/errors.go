package store

import "errors"

var (
	// ErrStale indicates a compare-and-swap update found the row changed by
	// another writer.
	ErrStale = errors.New("record modified concurrently")
	// ErrEDLLocked indicates a write against a locked EDL document.
	ErrEDLLocked = errors.New("edl is locked")
	// ErrEDLNotLocked indicates an operation that requires a locked EDL.
	ErrEDLNotLocked = errors.New("edl is not locked")
)
