// Package worker exposes helpers to run the grading gateway as a Temporal worker.
package worker

import (
	"go.temporal.io/sdk/activity"

	"github.com/ahrav/go-grader/internal/workflow"
	pkgactivity "github.com/ahrav/go-grader/pkg/activity"
)

// Registry is the registration surface shared by sdk workers and the
// Temporal test environment.
type Registry interface {
	RegisterWorkflow(w any)
	RegisterActivityWithOptions(a any, options activity.RegisterOptions)
}

// RegisterAll registers the grade workflow and the dispatch activity.
// It must be called once, before the worker starts.
func RegisterAll(r Registry, d Dispatcher) {
	acts := NewActivities(pkgactivity.NewBaseActivities(), d)

	r.RegisterWorkflow(workflow.GradeWorkflow)
	r.RegisterActivityWithOptions(acts.Dispatch, activity.RegisterOptions{
		Name: workflow.DispatchActivityName,
	})
}
