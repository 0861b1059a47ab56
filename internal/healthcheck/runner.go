// Package healthcheck runs the gateway's built-in self-test suite and
// reports it in the healthcheck result shape.
//
// The suite is an explicit ordered list of Cases; nothing is discovered by
// reflection. Each case runs to one of three outcomes: pass (timed in
// microseconds), fail (an assertion failed) or error (the case returned an
// error or panicked).
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ahrav/go-grader/internal/domain"
)

// ErrDuplicateCase indicates two cases share a name.
var ErrDuplicateCase = errors.New("duplicate healthcheck case")

// Case is one named self-test.
type Case struct {
	Name string
	Run  func(t *T) error
}

// Outcome classifies a finished case.
type Outcome string

const (
	OutcomePass  Outcome = "pass"
	OutcomeFail  Outcome = "fail"
	OutcomeError Outcome = "error"
)

// CaseResult is the detailed record of one case. Output holds assertion
// messages, the returned error or the panic value.
type CaseResult struct {
	Name     string
	Outcome  Outcome
	Duration time.Duration
	Output   []string
}

// Report is the detailed form of a run.
type Report struct {
	Cases []CaseResult
}

// Result converts the report to the wire result. Pass times are rounded to
// the nearest microsecond.
func (r Report) Result() domain.HealthcheckResult {
	res := domain.NewHealthcheckResult()
	for _, c := range r.Cases {
		switch c.Outcome {
		case OutcomePass:
			res.Successes = append(res.Successes, domain.CaseTiming{
				Name: c.Name,
				Time: micros(c.Duration),
			})
		case OutcomeFail:
			res.Failures = append(res.Failures, domain.CaseRef{Name: c.Name})
		case OutcomeError:
			res.Errors = append(res.Errors, domain.CaseRef{Name: c.Name})
		}
	}
	res.TestsPassed = len(res.Failures) == 0 && len(res.Errors) == 0
	return res
}

func micros(d time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(time.Microsecond)))
}

// Observer is notified after every case. It must not block.
type Observer func(CaseResult)

// Runner executes a fixed suite. A Runner holds no mutable state and may be
// used concurrently.
type Runner struct {
	cases     []Case
	now       func() time.Time
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces time.Now for case timing.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithLogger sets the runner logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithObserver adds a per-case callback.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

// NewRunner builds a runner over cases, in order. Case names must be unique.
func NewRunner(cases []Case, opts ...Option) (*Runner, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, c := range cases {
		if c.Run == nil {
			return nil, fmt.Errorf("healthcheck case %q has no Run function", c.Name)
		}
		if !seen.Add(c.Name) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCase, c.Name)
		}
	}

	r := &Runner{
		cases:  append([]Case(nil), cases...),
		now:    time.Now,
		logger: slog.Default().With("component", "healthcheck"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Cases returns the names of the suite in run order.
func (r *Runner) Cases() []string {
	names := make([]string, len(r.cases))
	for i, c := range r.cases {
		names[i] = c.Name
	}
	return names
}

// Run executes the suite and returns the wire result.
func (r *Runner) Run(ctx context.Context) domain.HealthcheckResult {
	return r.RunReport(ctx).Result()
}

// RunReport executes the suite and returns per-case detail.
func (r *Runner) RunReport(ctx context.Context) Report {
	report := Report{Cases: make([]CaseResult, 0, len(r.cases))}
	for _, c := range r.cases {
		res := r.runCase(ctx, c)
		report.Cases = append(report.Cases, res)

		if res.Outcome != OutcomePass {
			r.logger.DebugContext(ctx, "healthcheck case did not pass",
				"case", res.Name,
				"outcome", res.Outcome)
		}
		for _, o := range r.observers {
			o(res)
		}
	}
	return report
}

func (r *Runner) runCase(ctx context.Context, c Case) (res CaseResult) {
	t := newT(ctx, c.Name)
	start := r.now()
	res = CaseResult{Name: c.Name}

	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(failNow); ok {
				res.Outcome = OutcomeFail
			} else {
				res.Outcome = OutcomeError
				t.Logf("panic: %v", rec)
			}
		}
		res.Duration = r.now().Sub(start)
		res.Output = t.Output()
	}()

	err := c.Run(t)
	switch {
	case err != nil:
		t.Logf("error: %v", err)
		res.Outcome = OutcomeError
	case t.Failed():
		res.Outcome = OutcomeFail
	default:
		res.Outcome = OutcomePass
	}
	return res
}
