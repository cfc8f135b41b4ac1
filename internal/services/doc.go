// Package services provides shared plumbing for cutroom's service layer:
// sentinel error markers used to classify failures, a Wrap helper that tags
// errors with component context, and context annotation helpers that carry
// session and job identifiers into structured logs.
package services
