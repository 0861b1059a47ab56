package worker

import (
	"context"

	"github.com/ahrav/go-grader/internal/domain"
	pkgactivity "github.com/ahrav/go-grader/pkg/activity"
)

// Dispatcher is the invocation boundary served by the activity.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) domain.Response
}

// Activities exposes the dispatcher as a Temporal activity.
type Activities struct {
	pkgactivity.BaseActivities
	dispatcher Dispatcher
}

// NewActivities wraps d.
func NewActivities(base pkgactivity.BaseActivities, d Dispatcher) *Activities {
	return &Activities{BaseActivities: base, dispatcher: d}
}

// Dispatch handles one event. Gateway failures are carried in the response,
// so the returned error is always nil.
func (a *Activities) Dispatch(ctx context.Context, event domain.Event) (domain.Response, error) {
	wfCtx := a.GetWorkflowContext(ctx)
	resp := a.dispatcher.Dispatch(ctx, event)

	if resp.IsError() {
		pkgactivity.SafeLogError(ctx, "Dispatch returned an error envelope",
			append(wfCtx.LogAttrs(), "command", event.Command(), "message", resp.Error.Message)...)
	} else {
		pkgactivity.SafeLog(ctx, "Dispatch completed",
			append(wfCtx.LogAttrs(), "command", resp.Command)...)
	}
	return resp, nil
}
