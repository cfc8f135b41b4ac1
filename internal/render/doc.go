// Package render manages render jobs: the job state machine, the HTTP client
// for the external render farm, and the orchestrator that submits, polls,
// retries, and cancels jobs against a locked edit decision list.
package render
