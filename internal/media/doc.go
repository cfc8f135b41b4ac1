// Package media defines the core domain model for multi-camera recording
// sessions: cameras, per-camera assets, sync offsets with confidence
// classification, and the session status machines that the sync engine and
// operator review drive.
package media
