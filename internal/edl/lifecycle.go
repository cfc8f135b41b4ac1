package edl

import (
	"context"
	"fmt"

	"cutroom/internal/services"
)

// LifecycleStore is the persistence surface lifecycle transitions need. It is
// implemented by *store.Store.
type LifecycleStore interface {
	GetEDL(ctx context.Context, sessionID string) (*Document, error)
	TransitionEDL(ctx context.Context, sessionID string, from, to Status) (*Document, error)
}

// Approve moves a draft EDL to approved. The document must validate cleanly;
// approval is the point where a human has signed off on the program.
func Approve(ctx context.Context, store LifecycleStore, sessionID string) (*Document, error) {
	doc, err := store.GetEDL(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.CanAdvanceTo(StatusApproved) {
		return nil, services.Wrap(services.ErrConflict, "edl", "approve",
			fmt.Sprintf("edl for session %s is %s; only draft documents can be approved", sessionID, doc.Status), nil)
	}
	if err := ValidateProgram(doc.Tracks.Program, doc.DurationMs); err != nil {
		return nil, err
	}
	return store.TransitionEDL(ctx, sessionID, StatusDraft, StatusApproved)
}

// Lock freezes an approved EDL for render submission. Once locked the program
// is immutable; render jobs reference it by version.
func Lock(ctx context.Context, store LifecycleStore, sessionID string) (*Document, error) {
	doc, err := store.GetEDL(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.CanAdvanceTo(StatusLocked) {
		return nil, services.Wrap(services.ErrConflict, "edl", "lock",
			fmt.Sprintf("edl for session %s is %s; only approved documents can be locked", sessionID, doc.Status), nil)
	}
	return store.TransitionEDL(ctx, sessionID, StatusApproved, StatusLocked)
}
