// Package store persists sessions, EDL documents, and render jobs in SQLite.
// All status changes go through compare-and-swap updates so concurrent CLI
// invocations cannot clobber each other's transitions.
package store
