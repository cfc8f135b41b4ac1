// Package syncengine detects time offsets between camera angles by
// cross-correlating each camera's audio against the master camera. It drives
// the session status machine through syncing and needs-review and records the
// operator's approve or correct verdict.
package syncengine
