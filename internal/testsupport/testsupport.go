// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store setup, and session fixtures.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cutroom/internal/config"
	"cutroom/internal/media"
	"cutroom/internal/store"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// MustOpenStore opens a store against the test config and closes it when the
// test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// Session builds a two-camera session fixture ready for sync.
func Session(id string) *media.Session {
	return &media.Session{
		ID:         id,
		Title:      "Sunday Service",
		RecordedAt: time.Date(2026, 1, 4, 9, 30, 0, 0, time.UTC),
		DurationMs: 90 * 60 * 1000,
		Status:     media.StatusDraft,
		Assets: map[media.Camera]media.Asset{
			media.CameraA: {
				Camera:      media.CameraA,
				AudioURL:    "https://cdn.example.com/" + id + "/a.wav",
				OriginalURL: "https://cdn.example.com/" + id + "/a.mov",
			},
			media.CameraB: {
				Camera:      media.CameraB,
				OriginalURL: "https://cdn.example.com/" + id + "/b.mov",
			},
		},
	}
}

// SyncedSession builds a session fixture that already carries offsets.
func SyncedSession(id string) *media.Session {
	session := Session(id)
	session.Status = media.StatusNeedsReview
	session.MasterCamera = media.CameraA
	session.SyncResults = map[media.Camera]media.SyncResult{
		media.CameraA: {Camera: media.CameraA, OffsetMs: 0, Confidence: 100, Classification: media.ClassLooksGood},
		media.CameraB: {Camera: media.CameraB, OffsetMs: 1250, Confidence: 12.4, Classification: media.ClassLooksGood},
	}
	session.AllReliable = true
	return session
}

// MustCreateSession persists a fixture session.
func MustCreateSession(t testing.TB, st *store.Store, session *media.Session) {
	t.Helper()
	if err := st.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("create session %s: %v", session.ID, err)
	}
}
