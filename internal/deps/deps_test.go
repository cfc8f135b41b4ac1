package deps_test

import (
	"testing"

	"cutroom/internal/deps"
	"cutroom/internal/testsupport"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "present", Command: "sh"},
		{Name: "absent", Command: "definitely-not-installed-xyz"},
		{Name: "unset", Command: ""},
	})
	if len(statuses) != 3 {
		t.Fatalf("statuses = %+v", statuses)
	}
	if !statuses[0].Available {
		t.Fatalf("sh should be available: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("missing binary not reported: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("unset command not reported: %+v", statuses[2])
	}
}

func TestDefaultsCoverConfiguredTools(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	requirements := deps.Defaults(cfg)
	if len(requirements) != 3 {
		t.Fatalf("requirements = %+v", requirements)
	}
	names := map[string]bool{}
	for _, req := range requirements {
		names[req.Name] = true
	}
	for _, want := range []string{"ffprobe", "ffmpeg", "audio-offset-finder"} {
		if !names[want] {
			t.Fatalf("missing requirement %q", want)
		}
	}
}
