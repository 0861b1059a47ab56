package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/go-grader/internal/domain"
)

func dispatchStub(resp domain.Response, err error) func(context.Context, domain.Event) (domain.Response, error) {
	return func(context.Context, domain.Event) (domain.Response, error) {
		return resp, err
	}
}

// TestGradeWorkflow verifies that GradeWorkflow forwards the event to the
// dispatch activity once and returns its response unchanged.
func TestGradeWorkflow(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}

	t.Run("returns the activity response", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterActivityWithOptions(
			dispatchStub(domain.Success(domain.CommandGrade, map[string]any{"is_correct": true}), nil),
			activity.RegisterOptions{Name: DispatchActivityName})

		env.ExecuteWorkflow(GradeWorkflow, domain.NewEvent(domain.CommandGrade, `{"response": 1, "answer": 1}`))
		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var resp domain.Response
		require.NoError(t, env.GetWorkflowResult(&resp))
		assert.Equal(t, domain.CommandGrade, resp.Command)
		assert.Equal(t, map[string]any{"is_correct": true}, resp.Result)
	})

	t.Run("error envelopes are results, not workflow errors", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterActivityWithOptions(
			dispatchStub(domain.Failure(&domain.ErrorDetail{Message: domain.MsgNoBody}), nil),
			activity.RegisterOptions{Name: DispatchActivityName})

		env.ExecuteWorkflow(GradeWorkflow, domain.Event{})
		require.NoError(t, env.GetWorkflowError())

		var resp domain.Response
		require.NoError(t, env.GetWorkflowResult(&resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, domain.MsgNoBody, resp.Error.Message)
	})

	t.Run("activity failure is not retried", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterActivityWithOptions(
			dispatchStub(domain.Response{}, errors.New("worker crashed")),
			activity.RegisterOptions{Name: DispatchActivityName})
		env.OnActivity(DispatchActivityName, mock.Anything, mock.Anything).
			Return(domain.Response{}, errors.New("worker crashed")).Once()

		env.ExecuteWorkflow(GradeWorkflow, domain.Event{})
		require.True(t, env.IsWorkflowCompleted())

		err := env.GetWorkflowError()
		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DispatchFailed", appErr.Type())
		env.AssertExpectations(t)
	})
}
