package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"cutroom/internal/config"
	"cutroom/internal/media"
	"cutroom/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q does not contain %q", haystack, needle)
	}
}

// writeManifest stores a two-camera synced session manifest and returns its
// path.
func writeManifest(t *testing.T, dir, sessionID string) string {
	t.Helper()
	session := media.Session{
		ID:           sessionID,
		Title:        "Sunday Service",
		RecordedAt:   time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC),
		DurationMs:   30 * 60 * 1000,
		Status:       media.StatusSynced,
		MasterCamera: media.CameraA,
		Assets: map[media.Camera]media.Asset{
			media.CameraA: {
				Camera:      media.CameraA,
				AudioURL:    "https://recordings.example.com/svc/a.wav",
				OriginalURL: "https://recordings.example.com/svc/a.mp4",
			},
			media.CameraB: {
				Camera:      media.CameraB,
				OriginalURL: "https://recordings.example.com/svc/b.mp4",
			},
		},
		SyncResults: map[media.Camera]media.SyncResult{
			media.CameraA: {Camera: media.CameraA, OffsetMs: 0, Confidence: 100, Classification: media.ClassLooksGood},
			media.CameraB: {Camera: media.CameraB, OffsetMs: 1250, Confidence: 12.4, Classification: media.ClassLooksGood},
		},
		AllReliable: true,
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	path := filepath.Join(dir, sessionID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
