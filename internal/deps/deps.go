// Package deps verifies the external binaries cutroom shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"cutroom/internal/config"
)

// Requirement defines an external dependency cutroom relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Defaults lists cutroom's external tools for the configured binaries.
func Defaults(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "ffprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "audio loudness measurement (primary)",
		},
		{
			Name:        "ffmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "audio loudness measurement (fallback)",
			Optional:    true,
		},
		{
			Name:        "audio-offset-finder",
			Command:     cfg.Tools.OffsetFinder,
			Description: "cross-correlation offset detection (pip install audio-offset-finder)",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
