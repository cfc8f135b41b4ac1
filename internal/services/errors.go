package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolUnavailable marks a missing external binary. Correlation treats
	// this as actionable and never defaults it away.
	ErrToolUnavailable = errors.New("external tool unavailable")
	// ErrExternalTool marks a tool that ran but failed or produced garbage.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks operator-visible invariant violations; rejected
	// actions, not crashes.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing sessions, EDLs, or jobs.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks state-machine conflicts: retry on a non-failed job,
	// cancel on a terminal job, approve with unsaved edits.
	ErrConflict = errors.New("state conflict")
	// ErrTransient marks recoverable I/O failures such as download errors.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
