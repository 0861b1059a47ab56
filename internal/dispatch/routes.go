package dispatch

import (
	"context"

	"github.com/ahrav/go-grader/internal/contract"
	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/healthcheck"
	"github.com/ahrav/go-grader/internal/payload"
	"github.com/ahrav/go-grader/internal/scoring"
)

// GradeHandler parses and validates the request body, then runs the
// scoring function.
func GradeHandler(v *contract.Validator, adapter *scoring.Adapter) Handler {
	return HandlerFunc(func(ctx context.Context, inv *Invocation) any {
		body, perr := payload.ParseBody(inv.Event)
		if perr != nil {
			return domain.Failure(perr)
		}

		if verr := v.ValidateRequest(body); verr != nil {
			return domain.Failure(verr)
		}

		req, err := domain.NewGradeRequest(body)
		if err != nil {
			// Unreachable for bodies that passed the request contract.
			return domain.Failure(&domain.ErrorDetail{
				Message:     domain.MsgRequestViolation,
				Description: err.Error(),
				Kind:        domain.ErrorKindContractViolation,
			})
		}

		out := adapter.Grade(ctx, req)
		if !out.OK() {
			return domain.Failure(out.Fault)
		}
		return domain.Success(domain.CommandGrade, out.Result)
	})
}

// HealthcheckHandler runs the self-test suite. The request body is ignored.
func HealthcheckHandler(runner *healthcheck.Runner) Handler {
	return HandlerFunc(func(ctx context.Context, _ *Invocation) any {
		return domain.Success(domain.CommandHealthcheck, runner.Run(ctx))
	})
}

// UnknownHandler rejects commands outside the routable set without reading
// the body.
func UnknownHandler() Handler {
	return HandlerFunc(func(_ context.Context, inv *Invocation) any {
		return domain.Failure(&domain.ErrorDetail{
			Message: domain.UnknownCommandMessage(inv.Command),
			Kind:    domain.ErrorKindUnknownCommand,
		})
	})
}
