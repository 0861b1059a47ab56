package dispatch

import (
	"context"
	"time"

	"github.com/ahrav/go-grader/internal/domain"
)

// Invocation is the per-call state threaded through the pipeline.
type Invocation struct {
	ID      string
	Command domain.Command
	Event   domain.Event
	Started time.Time
}

// Handler produces the outbound payload for an invocation. The payload is
// normally a domain.Response, but any JSON-encodable value is accepted: it is
// checked against the response contract before it leaves the dispatcher.
type Handler interface {
	Handle(ctx context.Context, inv *Invocation) any
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, *Invocation) any

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, inv *Invocation) any {
	return f(ctx, inv)
}

// Middleware transforms a Handler into an enhanced Handler.
type Middleware func(Handler) Handler

// Chain builds a middleware pipeline around a core handler.
// The first middleware is outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
