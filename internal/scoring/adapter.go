// Package scoring hosts the user-supplied grading function behind a fault
// boundary: whatever the function returns, raises or panics with, the
// adapter produces either a result or an error detail.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/pkg/grading"
)

// Outcome is the result of one scoring call. Exactly one of Result and
// Fault is set.
type Outcome struct {
	Result grading.Result
	Fault  *domain.ErrorDetail
}

// OK reports whether the scoring function produced a result.
func (o Outcome) OK() bool { return o.Fault == nil }

// Adapter invokes a grading.Func and converts its failures.
type Adapter struct {
	fn     grading.Func
	logger *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter wraps fn. A nil fn selects grading.AlwaysCorrect.
func NewAdapter(fn grading.Func, opts ...Option) *Adapter {
	if fn == nil {
		fn = grading.AlwaysCorrect
	}
	a := &Adapter{
		fn:     fn,
		logger: slog.Default().With("component", "scoring"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Quiet returns a copy of a that logs nothing. The self-test suite grades
// through it so case diagnostics stay in the healthcheck result.
func (a *Adapter) Quiet() *Adapter {
	return &Adapter{fn: a.fn, logger: slog.New(slog.DiscardHandler)}
}

// Grade runs the scoring function on req. No timeout is applied; ctx is
// passed through so the function may observe cancellation.
func (a *Adapter) Grade(ctx context.Context, req domain.GradeRequest) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "grading function panicked",
				"panic", r,
				"stack", string(debug.Stack()))
			out = Outcome{Fault: fault(describePanic(r))}
		}
	}()

	params := req.Params
	if params == nil {
		params = map[string]any{}
	}

	result, err := a.fn(ctx, req.Response, req.Answer, params)
	if err != nil {
		a.logger.WarnContext(ctx, "grading function returned an error", "error", err)
		return Outcome{Fault: fault(describeError(err))}
	}
	return Outcome{Result: result}
}

func fault(description string) *domain.ErrorDetail {
	return &domain.ErrorDetail{
		Message:     domain.MsgGradingFuncRaised,
		Description: description,
		Kind:        domain.ErrorKindScoringFault,
	}
}

// describeError uses the error text, or the error's type when the text is
// empty.
func describeError(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%T()", err)
}

func describePanic(r any) string {
	switch v := r.(type) {
	case error:
		return describeError(v)
	case string:
		if v != "" {
			return v
		}
	default:
		if msg := fmt.Sprint(v); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%T()", r)
}
