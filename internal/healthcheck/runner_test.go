package healthcheck_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-grader/internal/contract"
	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/healthcheck"
	"github.com/ahrav/go-grader/internal/scoring"
	"github.com/ahrav/go-grader/pkg/grading"
)

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestRunner_Outcomes(t *testing.T) {
	cases := []healthcheck.Case{
		{Name: "pass", Run: func(t *healthcheck.T) error {
			assert.True(t, true)
			return nil
		}},
		{Name: "assert-fail", Run: func(t *healthcheck.T) error {
			assert.Equal(t, 1, 2)
			return nil
		}},
		{Name: "require-fail", Run: func(t *healthcheck.T) error {
			require.Equal(t, "a", "b")
			panic("unreachable")
		}},
		{Name: "returned-error", Run: func(*healthcheck.T) error {
			return errors.New("broken fixture")
		}},
		{Name: "panic", Run: func(*healthcheck.T) error {
			var m map[string]int
			m["x"] = 1
			return nil
		}},
	}

	r, err := healthcheck.NewRunner(cases, healthcheck.WithClock(stepClock(1500*time.Nanosecond)))
	require.NoError(t, err)

	got := r.Run(context.Background())
	assert.False(t, got.TestsPassed)
	assert.Equal(t, []domain.CaseTiming{{Name: "pass", Time: 2}}, got.Successes)
	assert.Equal(t, []domain.CaseRef{{Name: "assert-fail"}, {Name: "require-fail"}}, got.Failures)
	assert.Equal(t, []domain.CaseRef{{Name: "returned-error"}, {Name: "panic"}}, got.Errors)
}

func TestRunner_CapturesOutput(t *testing.T) {
	r, err := healthcheck.NewRunner([]healthcheck.Case{
		{Name: "fail", Run: func(t *healthcheck.T) error {
			assert.Equal(t, "expected", "actual", "custom context")
			return nil
		}},
		{Name: "error", Run: func(*healthcheck.T) error { return errors.New("boom") }},
	})
	require.NoError(t, err)

	report := r.RunReport(context.Background())
	require.Len(t, report.Cases, 2)
	require.NotEmpty(t, report.Cases[0].Output)
	assert.Contains(t, report.Cases[0].Output[0], "custom context")
	assert.Equal(t, []string{"error: boom"}, report.Cases[1].Output)
}

func TestRunner_Empty(t *testing.T) {
	r, err := healthcheck.NewRunner(nil)
	require.NoError(t, err)

	got := r.Run(context.Background())
	assert.True(t, got.TestsPassed)
	assert.Empty(t, got.Successes)
	assert.NotNil(t, got.Successes)
}

func TestNewRunner_Validation(t *testing.T) {
	noop := func(*healthcheck.T) error { return nil }

	_, err := healthcheck.NewRunner([]healthcheck.Case{{Name: "a", Run: noop}, {Name: "a", Run: noop}})
	assert.ErrorIs(t, err, healthcheck.ErrDuplicateCase)

	_, err = healthcheck.NewRunner([]healthcheck.Case{{Name: "a"}})
	assert.Error(t, err)
}

func TestRunner_Observer(t *testing.T) {
	var seen []healthcheck.Outcome
	r, err := healthcheck.NewRunner([]healthcheck.Case{
		{Name: "ok", Run: func(*healthcheck.T) error { return nil }},
		{Name: "bad", Run: func(t *healthcheck.T) error { t.Fail(); return nil }},
	}, healthcheck.WithObserver(func(res healthcheck.CaseResult) {
		seen = append(seen, res.Outcome)
	}))
	require.NoError(t, err)

	r.Run(context.Background())
	assert.Equal(t, []healthcheck.Outcome{healthcheck.OutcomePass, healthcheck.OutcomeFail}, seen)
}

func TestDefaultSuite_Passes(t *testing.T) {
	v := contract.NewValidator(contract.MustBuiltin())
	suite := healthcheck.DefaultSuite(v, scoring.NewAdapter(grading.AlwaysCorrect))

	r, err := healthcheck.NewRunner(suite)
	require.NoError(t, err)

	report := r.RunReport(context.Background())
	for _, c := range report.Cases {
		assert.Equal(t, healthcheck.OutcomePass, c.Outcome, "%s: %v", c.Name, c.Output)
	}

	got := report.Result()
	assert.True(t, got.TestsPassed)
	assert.Len(t, got.Successes, len(suite))
	assert.Empty(t, got.Failures)
	assert.Empty(t, got.Errors)
}

func TestDefaultSuite_Order(t *testing.T) {
	v := contract.NewValidator(contract.MustBuiltin())
	r, err := healthcheck.NewRunner(healthcheck.DefaultSuite(v, scoring.NewAdapter(nil)))
	require.NoError(t, err)

	names := r.Cases()
	require.NotEmpty(t, names)
	assert.Equal(t, "RequestValidation/EmptyRequestBody", names[0])
	assert.Equal(t, "GradingFunction/ReturnsIsCorrectTrue", names[len(names)-1])
}

func TestDefaultSuite_ReportsBrokenGradingFunction(t *testing.T) {
	v := contract.NewValidator(contract.MustBuiltin())
	wrong := func(context.Context, any, any, map[string]any) (grading.Result, error) {
		return grading.Result{"is_correct": false}, nil
	}
	raising := func(context.Context, any, any, map[string]any) (grading.Result, error) {
		return nil, errors.New("not implemented")
	}

	for name, fn := range map[string]grading.Func{"wrong": wrong, "raising": raising} {
		t.Run(name, func(t *testing.T) {
			r, err := healthcheck.NewRunner(healthcheck.DefaultSuite(v, scoring.NewAdapter(fn)))
			require.NoError(t, err)

			got := r.Run(context.Background())
			assert.False(t, got.TestsPassed)
			assert.Equal(t, []domain.CaseRef{{Name: "GradingFunction/ReturnsIsCorrectTrue"}}, got.Failures)
		})
	}
}

func TestDefaultSuite_KeepsDiagnosticsOutOfLogs(t *testing.T) {
	var scoringLog, runnerLog bytes.Buffer
	debugLogger := func(buf *bytes.Buffer) *slog.Logger {
		return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	panicking := func(context.Context, any, any, map[string]any) (grading.Result, error) {
		panic("secret assertion detail")
	}

	v := contract.NewValidator(contract.MustBuiltin())
	adapter := scoring.NewAdapter(panicking, scoring.WithLogger(debugLogger(&scoringLog)))
	r, err := healthcheck.NewRunner(healthcheck.DefaultSuite(v, adapter),
		healthcheck.WithLogger(debugLogger(&runnerLog)))
	require.NoError(t, err)

	report := r.RunReport(context.Background())
	require.False(t, report.Result().TestsPassed)

	last := report.Cases[len(report.Cases)-1]
	assert.Equal(t, healthcheck.OutcomeFail, last.Outcome)
	assert.Contains(t, strings.Join(last.Output, "\n"), "secret assertion detail")

	assert.Empty(t, scoringLog.String())
	assert.NotContains(t, runnerLog.String(), "secret assertion detail")
	assert.NotContains(t, runnerLog.String(), "goroutine")
}
