// Package logging wires log/slog for cutroom: a console handler for operator
// terminals, a JSON handler for machine consumption, attribute helpers, and
// context-derived fields (session, stage, job) shared across components.
package logging
