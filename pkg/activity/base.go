// Package activity holds the pieces shared by Temporal activities of the
// gateway: execution metadata for log correlation and logging helpers that
// are safe to call from plain unit tests.
package activity

import (
	"context"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
)

// Identifiers reported when no activity is executing.
const (
	LocalWorkflowID = "local-workflow"
	LocalActivityID = "local-activity"
	localRunPrefix  = "local-run-"
)

// WorkflowContext identifies the activity execution serving an invocation.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	ActivityID string
	TaskQueue  string
	Attempt    int32
}

// LogAttrs returns the context as slog-style key/value pairs.
func (w WorkflowContext) LogAttrs() []any {
	return []any{
		"workflow_id", w.WorkflowID,
		"run_id", w.RunID,
		"activity_id", w.ActivityID,
		"task_queue", w.TaskQueue,
		"attempt", w.Attempt,
	}
}

// BaseActivities is embedded by activity structs.
type BaseActivities struct{}

// NewBaseActivities returns the zero BaseActivities.
func NewBaseActivities() BaseActivities {
	return BaseActivities{}
}

// GetWorkflowContext reads the execution metadata of ctx. activity.GetInfo
// panics outside an activity; the local identifiers are returned then, with
// a fresh run ID per call.
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) (wfCtx WorkflowContext) {
	defer func() {
		if recover() != nil {
			wfCtx = WorkflowContext{
				WorkflowID: LocalWorkflowID,
				RunID:      localRunPrefix + uuid.NewString()[:8],
				ActivityID: LocalActivityID,
				Attempt:    1,
			}
		}
	}()

	info := activity.GetInfo(ctx)
	return WorkflowContext{
		WorkflowID: info.WorkflowExecution.ID,
		RunID:      info.WorkflowExecution.RunID,
		ActivityID: info.ActivityID,
		TaskQueue:  info.TaskQueue,
		Attempt:    info.Attempt,
	}
}

// SafeLog logs at info level through the activity logger and is a no-op
// outside an activity.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogError is SafeLog at error level.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}
