// Package dispatch turns a single inbound event into a single response.
//
// The dispatcher reads the command from the event, routes it to the grade,
// healthcheck or unknown-command handler, and passes whatever the handler
// produced through the response contract. Nothing a handler does can make
// the dispatcher return a payload that violates that contract.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-grader/internal/contract"
	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/healthcheck"
	"github.com/ahrav/go-grader/internal/scoring"
)

// Dispatcher routes events to handlers. It holds only immutable state after
// construction and may be shared across goroutines.
type Dispatcher struct {
	validator *contract.Validator
	routes    map[domain.Command]Handler
	unknown   Handler

	// inner wraps the routed handler, before the contract gate.
	inner []Middleware
	// outer wraps the gated handler and only ever sees conforming responses.
	outer []Middleware

	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHandler overrides the route for cmd. Its output is still gated.
func WithHandler(cmd domain.Command, h Handler) Option {
	return func(d *Dispatcher) { d.routes[cmd] = h }
}

// WithUnknownHandler overrides the unknown-command route.
func WithUnknownHandler(h Handler) Option {
	return func(d *Dispatcher) { d.unknown = h }
}

// WithMiddleware wraps every route. The wrapped output is still gated.
func WithMiddleware(m ...Middleware) Option {
	return func(d *Dispatcher) { d.inner = append(d.inner, m...) }
}

// WithObserver adds middleware that runs outside the contract gate, e.g.
// logging, metrics and event emission. It must return the response it
// receives unchanged.
func WithObserver(m ...Middleware) Option {
	return func(d *Dispatcher) { d.outer = append(d.outer, m...) }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithIDGenerator replaces the invocation ID source.
func WithIDGenerator(f func() string) Option {
	return func(d *Dispatcher) { d.newID = f }
}

// New builds a dispatcher over the compiled contracts, the scoring adapter
// and the self-test runner.
func New(v *contract.Validator, adapter *scoring.Adapter, runner *healthcheck.Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		validator: v,
		routes: map[domain.Command]Handler{
			domain.CommandGrade:       GradeHandler(v, adapter),
			domain.CommandHealthcheck: HealthcheckHandler(runner),
		},
		unknown: UnknownHandler(),
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
		logger:  slog.Default().With("component", "dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one event. It never fails: every outcome is expressed as
// a response that satisfies the response contract.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.Event) domain.Response {
	inv := &Invocation{
		ID:      d.newID(),
		Command: event.Command(),
		Event:   event,
		Started: d.now(),
	}

	h := Chain(d.gated(d.route(inv.Command)), d.outer...)
	out := h.Handle(ctx, inv)

	if resp, ok := out.(domain.Response); ok {
		return resp
	}
	// An observer replaced the response; gate it again.
	d.logger.WarnContext(ctx, "observer middleware replaced the response", "invocation_id", inv.ID)
	return gate(d.validator, out)
}

func (d *Dispatcher) route(cmd domain.Command) Handler {
	h, ok := d.routes[cmd]
	if !ok {
		h = d.unknown
	}
	return Chain(h, d.inner...)
}

func (d *Dispatcher) gated(h Handler) Handler {
	return HandlerFunc(func(ctx context.Context, inv *Invocation) any {
		return gate(d.validator, h.Handle(ctx, inv))
	})
}
