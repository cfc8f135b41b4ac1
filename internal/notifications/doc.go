// Package notifications pushes operator-facing events (sync finished, render
// settled, errors) to an ntfy topic when one is configured.
package notifications
