// Package workflow implements the Temporal workflow that exposes the grading
// gateway to Temporal clients.
//
// The workflow is a thin, deterministic wrapper: it forwards the event to the
// Dispatch activity exactly once and returns its response. Every failure the
// gateway knows about is already part of the response, so the workflow only
// errors when the activity itself could not run.
//
// Workflows must not contain non-deterministic operations such as random
// number generation, system time access or external I/O; those live in the
// activity.
package workflow
