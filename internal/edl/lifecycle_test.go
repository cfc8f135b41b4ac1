package edl_test

import (
	"context"
	"errors"
	"testing"

	"cutroom/internal/edl"
	"cutroom/internal/services"
)

type fakeLifecycleStore struct {
	doc         *edl.Document
	transitions []string
}

func (f *fakeLifecycleStore) GetEDL(_ context.Context, sessionID string) (*edl.Document, error) {
	if f.doc == nil || f.doc.SessionID != sessionID {
		return nil, services.Wrap(services.ErrNotFound, "store", "get-edl", "no edl for session "+sessionID, nil)
	}
	copied := *f.doc
	return &copied, nil
}

func (f *fakeLifecycleStore) TransitionEDL(_ context.Context, sessionID string, from, to edl.Status) (*edl.Document, error) {
	if f.doc.Status != from {
		return nil, services.Wrap(services.ErrConflict, "store", "transition-edl", "status changed underneath", nil)
	}
	f.doc.Status = to
	f.doc.Version++
	f.transitions = append(f.transitions, string(from)+"->"+string(to))
	copied := *f.doc
	return &copied, nil
}

func TestApproveAdvancesDraft(t *testing.T) {
	store := &fakeLifecycleStore{doc: lockedDocument(t)}
	store.doc.Status = edl.StatusDraft

	doc, err := edl.Approve(context.Background(), store, store.doc.SessionID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if doc.Status != edl.StatusApproved {
		t.Fatalf("status = %q", doc.Status)
	}
	if len(store.transitions) != 1 || store.transitions[0] != "draft->approved" {
		t.Fatalf("transitions = %v", store.transitions)
	}
}

func TestApproveRejectsInvalidProgram(t *testing.T) {
	store := &fakeLifecycleStore{doc: lockedDocument(t)}
	store.doc.Status = edl.StatusDraft
	store.doc.Tracks.Program[1].StartMs = 4000 // overlaps the first cut

	if _, err := edl.Approve(context.Background(), store, store.doc.SessionID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
	if len(store.transitions) != 0 {
		t.Fatal("transition persisted despite invalid program")
	}
}

func TestApproveRejectsNonDraft(t *testing.T) {
	store := &fakeLifecycleStore{doc: lockedDocument(t)}
	if _, err := edl.Approve(context.Background(), store, store.doc.SessionID); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestLockRequiresApproved(t *testing.T) {
	store := &fakeLifecycleStore{doc: lockedDocument(t)}
	store.doc.Status = edl.StatusApproved

	doc, err := edl.Lock(context.Background(), store, store.doc.SessionID)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if doc.Status != edl.StatusLocked {
		t.Fatalf("status = %q", doc.Status)
	}

	store.doc.Status = edl.StatusDraft
	if _, err := edl.Lock(context.Background(), store, store.doc.SessionID); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("draft lock error = %v, want conflict", err)
	}
}

func TestApproveUnknownSession(t *testing.T) {
	store := &fakeLifecycleStore{doc: &edl.Document{SessionID: "other", Status: edl.StatusDraft}}
	if _, err := edl.Approve(context.Background(), store, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
