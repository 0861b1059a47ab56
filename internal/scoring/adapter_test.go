package scoring_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/scoring"
	"github.com/ahrav/go-grader/pkg/grading"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestAdapter_Grade(t *testing.T) {
	req := domain.GradeRequest{Response: "hello", Answer: "world!"}

	tests := []struct {
		name            string
		fn              grading.Func
		wantResult      grading.Result
		wantDescription string
	}{
		{
			name:       "default function",
			fn:         nil,
			wantResult: grading.Result{"is_correct": true},
		},
		{
			name: "returned error",
			fn: func(context.Context, any, any, map[string]any) (grading.Result, error) {
				return nil, errors.New("division by zero")
			},
			wantDescription: "division by zero",
		},
		{
			name: "error with empty text",
			fn: func(context.Context, any, any, map[string]any) (grading.Result, error) {
				return nil, emptyError{}
			},
			wantDescription: "scoring_test.emptyError()",
		},
		{
			name: "panic with string",
			fn: func(context.Context, any, any, map[string]any) (grading.Result, error) {
				panic("index out of range")
			},
			wantDescription: "index out of range",
		},
		{
			name: "panic with error",
			fn: func(context.Context, any, any, map[string]any) (grading.Result, error) {
				panic(errors.New("bad state"))
			},
			wantDescription: "bad state",
		},
		{
			name: "panic with empty string",
			fn: func(context.Context, any, any, map[string]any) (grading.Result, error) {
				panic("")
			},
			wantDescription: "string()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := scoring.NewAdapter(tt.fn).Grade(context.Background(), req)

			if tt.wantDescription == "" {
				require.True(t, out.OK())
				assert.Equal(t, tt.wantResult, out.Result)
				return
			}

			require.False(t, out.OK())
			assert.Nil(t, out.Result)
			assert.Equal(t, domain.MsgGradingFuncRaised, out.Fault.Message)
			assert.Equal(t, tt.wantDescription, out.Fault.Description)
			assert.Equal(t, domain.ErrorKindScoringFault, out.Fault.Kind)
		})
	}
}

func TestAdapter_PassesArguments(t *testing.T) {
	var gotParams map[string]any
	var gotResponse, gotAnswer any
	fn := func(_ context.Context, response, answer any, params map[string]any) (grading.Result, error) {
		gotResponse, gotAnswer, gotParams = response, answer, params
		return grading.Result{"is_correct": false}, nil
	}

	out := scoring.NewAdapter(fn).Grade(context.Background(), domain.GradeRequest{Response: "r", Answer: "a"})
	require.True(t, out.OK())
	assert.Equal(t, "r", gotResponse)
	assert.Equal(t, "a", gotAnswer)
	assert.NotNil(t, gotParams, "params default to an empty object")
	assert.Empty(t, gotParams)
}

func TestAdapter_PropagatesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn := func(ctx context.Context, _, _ any, _ map[string]any) (grading.Result, error) {
		return nil, ctx.Err()
	}

	out := scoring.NewAdapter(fn).Grade(ctx, domain.GradeRequest{})
	require.False(t, out.OK())
	assert.Equal(t, context.Canceled.Error(), out.Fault.Description)
}

func TestAdapter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fn := func(context.Context, any, any, map[string]any) (grading.Result, error) {
		panic("boom")
	}

	adapter := scoring.NewAdapter(fn, scoring.WithLogger(logger))
	out := adapter.Quiet().Grade(context.Background(), domain.GradeRequest{})
	require.False(t, out.OK())
	assert.Equal(t, "boom", out.Fault.Description)
	assert.Empty(t, buf.String())

	adapter.Grade(context.Background(), domain.GradeRequest{})
	assert.Contains(t, buf.String(), "grading function panicked")
}
