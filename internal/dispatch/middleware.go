package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/pkg/events"
)

// Metrics records invocation outcomes.
type Metrics interface {
	RecordInvocation(command, outcome string, duration time.Duration)
}

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

// RecordInvocation implements Metrics.
func (NoOpMetrics) RecordInvocation(string, string, time.Duration) {}

// OutcomeSuccess labels invocations that returned the success branch.
const OutcomeSuccess = "success"

// Outcome labels a response for logs and metrics: OutcomeSuccess, or the
// error kind. Error envelopes without a kind are labelled "error".
func Outcome(resp domain.Response) string {
	if !resp.IsError() {
		return OutcomeSuccess
	}
	if k := resp.ErrorKind(); k != domain.ErrorKindNone {
		return string(k)
	}
	return "error"
}

// commandLabel keeps metric cardinality bounded.
func commandLabel(cmd domain.Command) string {
	if cmd.IsKnown() {
		return cmd.String()
	}
	return "unknown"
}

// LoggingMiddleware logs the start and end of every invocation.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dispatch")

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, inv *Invocation) any {
			logger.DebugContext(ctx, "invocation started",
				"invocation_id", inv.ID,
				"command", inv.Command)

			out := next.Handle(ctx, inv)

			resp, _ := out.(domain.Response)
			attrs := []any{
				"invocation_id", inv.ID,
				"command", inv.Command,
				"outcome", Outcome(resp),
				"duration", time.Since(inv.Started),
			}
			if resp.IsError() {
				attrs = append(attrs, "error_message", resp.Error.Message)
				logger.WarnContext(ctx, "invocation failed", attrs...)
			} else {
				logger.InfoContext(ctx, "invocation completed", attrs...)
			}
			return out
		})
	}
}

// MetricsMiddleware records one measurement per invocation.
func MetricsMiddleware(m Metrics) Middleware {
	if m == nil {
		m = NoOpMetrics{}
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, inv *Invocation) any {
			out := next.Handle(ctx, inv)
			resp, _ := out.(domain.Response)
			m.RecordInvocation(commandLabel(inv.Command), Outcome(resp), time.Since(inv.Started))
			return out
		})
	}
}

// EventsMiddleware emits an invocation.completed event per invocation.
// Sink failures are logged and never change the response.
func EventsMiddleware(sink events.EventSink, source string, logger *slog.Logger) Middleware {
	if sink == nil {
		sink = events.NewNoOpEventSink()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, inv *Invocation) any {
			out := next.Handle(ctx, inv)
			resp, _ := out.(domain.Response)
			emit(ctx, sink, source, logger, inv, resp)
			return out
		})
	}
}

func emit(ctx context.Context, sink events.EventSink, source string, logger *slog.Logger, inv *Invocation, resp domain.Response) {
	payload := events.InvocationCompleted{
		Command:        inv.Command.String(),
		Outcome:        Outcome(resp),
		DurationMicros: time.Since(inv.Started).Microseconds(),
	}
	if resp.IsError() {
		payload.ErrorKind = string(resp.ErrorKind())
		payload.ErrorMessage = resp.Error.Message
	}

	env, err := events.NewEnvelope(events.TypeInvocationCompleted, source, inv.ID, payload)
	if err == nil {
		err = sink.Append(ctx, env)
	}
	if err != nil {
		logger.WarnContext(ctx, "event emission failed",
			"invocation_id", inv.ID,
			"event_type", events.TypeInvocationCompleted,
			"error", err)
	}
}
