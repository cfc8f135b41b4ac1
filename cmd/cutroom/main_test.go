package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"cutroom/internal/render"
)

func TestConfigInitWritesSample(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Render.APIToken = "super-secret"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "super-secret") {
		t.Fatalf("api token leaked into output:\n%s", out)
	}
	requireContains(t, out, "<redacted>")
}

func TestSessionAddListShow(t *testing.T) {
	env := setupCLITestEnv(t)
	manifest := writeManifest(t, env.baseDir, "svc-2026-01-04")

	out, _, err := runCLI(t, env.configPath, "session", "add", "--manifest", manifest)
	if err != nil {
		t.Fatalf("session add: %v", err)
	}
	requireContains(t, out, "Registered session svc-2026-01-04")

	out, _, err = runCLI(t, env.configPath, "session", "list")
	if err != nil {
		t.Fatalf("session list: %v", err)
	}
	requireContains(t, out, "svc-2026-01-04")
	requireContains(t, out, "Sunday Service")

	out, _, err = runCLI(t, env.configPath, "session", "show", "svc-2026-01-04")
	if err != nil {
		t.Fatalf("session show: %v", err)
	}
	requireContains(t, out, "Master:    A")
	requireContains(t, out, "1250 ms")
}

func TestSessionShowMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env.configPath, "session", "show", "nope"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestEDLWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)
	manifest := writeManifest(t, env.baseDir, "svc-edl")
	if _, _, err := runCLI(t, env.configPath, "session", "add", "--manifest", manifest); err != nil {
		t.Fatalf("session add: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "edl", "import", "svc-edl")
	if err != nil {
		t.Fatalf("edl import: %v", err)
	}
	requireContains(t, out, "draft cut list")

	// Split the single seeded cut and switch the second half to camera B.
	out, _, err = runCLI(t, env.configPath, "edl", "split", "svc-edl", "--at", "600000")
	if err != nil {
		t.Fatalf("edl split: %v", err)
	}
	requireContains(t, out, "2 cuts")

	out, _, err = runCLI(t, env.configPath, "edl", "show", "svc-edl")
	if err != nil {
		t.Fatalf("edl show: %v", err)
	}
	cutIDs := regexp.MustCompile(`cut-[a-z0-9-]+`).FindAllString(out, -1)
	if len(cutIDs) < 2 {
		t.Fatalf("expected two cut ids in output:\n%s", out)
	}
	secondCut := cutIDs[1]

	if _, _, err := runCLI(t, env.configPath, "edl", "set-camera", "svc-edl", secondCut, "B"); err != nil {
		t.Fatalf("edl set-camera: %v", err)
	}
	if _, _, err := runCLI(t, env.configPath, "edl", "nudge", "svc-edl", secondCut, "--end=-4000"); err != nil {
		t.Fatalf("edl nudge: %v", err)
	}

	out, _, err = runCLI(t, env.configPath, "edl", "validate", "svc-edl")
	if err != nil {
		t.Fatalf("edl validate: %v", err)
	}
	requireContains(t, out, "is valid")

	if _, _, err := runCLI(t, env.configPath, "edl", "approve", "svc-edl"); err != nil {
		t.Fatalf("edl approve: %v", err)
	}
	if _, _, err := runCLI(t, env.configPath, "edl", "lock", "svc-edl"); err != nil {
		t.Fatalf("edl lock: %v", err)
	}

	// Editing after lock must be refused.
	if _, _, err := runCLI(t, env.configPath, "edl", "split", "svc-edl", "--at", "300000"); err == nil {
		t.Fatal("expected edit of locked cut list to fail")
	}

	exportPath := filepath.Join(env.baseDir, "program.fcpxml")
	out, _, err = runCLI(t, env.configPath, "edl", "export", "svc-edl", "--format", "fcpxml", "-o", exportPath)
	if err != nil {
		t.Fatalf("edl export: %v", err)
	}
	requireContains(t, out, "Exported fcpxml")

	payload, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(payload), "<fcpxml version=\"1.10\">") {
		t.Fatalf("unexpected export payload:\n%s", payload)
	}
}

func TestExportDraftCutList(t *testing.T) {
	env := setupCLITestEnv(t)
	manifest := writeManifest(t, env.baseDir, "svc-early")
	if _, _, err := runCLI(t, env.configPath, "session", "add", "--manifest", manifest); err != nil {
		t.Fatalf("session add: %v", err)
	}
	if _, _, err := runCLI(t, env.configPath, "edl", "import", "svc-early"); err != nil {
		t.Fatalf("edl import: %v", err)
	}

	// Drafts export their current working program; no approval needed.
	stdout, _, err := runCLI(t, env.configPath, "edl", "export", "svc-early", "--format", "json")
	if err != nil {
		t.Fatalf("edl export: %v", err)
	}
	requireContains(t, stdout, `"status": "draft"`)

	stdout, _, err = runCLI(t, env.configPath, "edl", "export", "svc-early")
	if err != nil {
		t.Fatalf("edl export fcpxml: %v", err)
	}
	requireContains(t, stdout, `<fcpxml version="1.10">`)
}

func TestRenderSubmitAndJobs(t *testing.T) {
	farm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/renders":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "farm-77"})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/renders/"):
			_ = json.NewEncoder(w).Encode(render.StatusReport{
				FarmJobID: "farm-77",
				State:     "completed",
				Progress:  100,
				OutputURL: "https://cdn.example.com/out.mp4",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer farm.Close()

	env := setupCLITestEnv(t)
	env.cfg.Render.BaseURL = farm.URL
	writeTestConfig(t, env.configPath, env.cfg)

	manifest := writeManifest(t, env.baseDir, "svc-render")
	for _, args := range [][]string{
		{"session", "add", "--manifest", manifest},
		{"edl", "import", "svc-render"},
		{"edl", "approve", "svc-render"},
		{"edl", "lock", "svc-render"},
	} {
		if _, _, err := runCLI(t, env.configPath, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, _, err := runCLI(t, env.configPath, "render", "submit", "svc-render", "--format", "short_9_16")
	if err != nil {
		t.Fatalf("render submit: %v", err)
	}
	requireContains(t, out, "farm job farm-77")

	out, _, err = runCLI(t, env.configPath, "render", "jobs", "svc-render")
	if err != nil {
		t.Fatalf("render jobs: %v", err)
	}
	requireContains(t, out, "short_9_16")

	jobID := regexp.MustCompile(`render-[0-9]+-[a-f0-9]+`).FindString(out)
	if jobID == "" {
		t.Fatalf("no job id in output:\n%s", out)
	}

	out, _, err = runCLI(t, env.configPath, "render", "status", jobID)
	if err != nil {
		t.Fatalf("render status: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "https://cdn.example.com/out.mp4")
}

func TestRenderSubmitRequiresLockedEDL(t *testing.T) {
	farm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer farm.Close()

	env := setupCLITestEnv(t)
	env.cfg.Render.BaseURL = farm.URL
	writeTestConfig(t, env.configPath, env.cfg)

	manifest := writeManifest(t, env.baseDir, "svc-unlocked")
	if _, _, err := runCLI(t, env.configPath, "session", "add", "--manifest", manifest); err != nil {
		t.Fatalf("session add: %v", err)
	}
	if _, _, err := runCLI(t, env.configPath, "edl", "import", "svc-unlocked"); err != nil {
		t.Fatalf("edl import: %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, "render", "submit", "svc-unlocked"); err == nil {
		t.Fatal("expected submit without locked cut list to fail")
	}
}

func TestDepsReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.FFprobe = "definitely-not-installed-xyz"
	env.cfg.Tools.OffsetFinder = "also-not-installed-xyz"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, env.configPath, "deps")
	if err == nil {
		t.Fatal("expected failure when required tools are missing")
	}
	requireContains(t, out, "missing")
}
