package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-grader/internal/domain"
)

// DispatchActivityName is the registered name of the dispatch activity.
const DispatchActivityName = "Dispatch"

// DefaultActivityTimeout bounds one dispatch activity execution.
const DefaultActivityTimeout = time.Minute

// GradeWorkflow dispatches a single event and returns its response.
// The activity is attempted once; invocations are never retried.
func GradeWorkflow(ctx workflow.Context, event domain.Event) (domain.Response, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "grade.v", workflow.DefaultVersion, currentVersion)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: DefaultActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var resp domain.Response
	if err := workflow.ExecuteActivity(ctx, DispatchActivityName, event).Get(ctx, &resp); err != nil {
		return domain.Response{}, temporal.NewNonRetryableApplicationError(
			"dispatch activity failed",
			"DispatchFailed",
			err,
		)
	}
	return resp, nil
}
