package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-grader/internal/contract"
	"github.com/ahrav/go-grader/internal/dispatch"
	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/healthcheck"
	"github.com/ahrav/go-grader/internal/scoring"
	"github.com/ahrav/go-grader/pkg/events"
	"github.com/ahrav/go-grader/pkg/grading"
)

func newDispatcher(t *testing.T, fn grading.Func, opts ...dispatch.Option) *dispatch.Dispatcher {
	t.Helper()
	v := contract.NewValidator(contract.MustBuiltin())
	adapter := scoring.NewAdapter(fn)
	runner, err := healthcheck.NewRunner(healthcheck.DefaultSuite(v, adapter))
	require.NoError(t, err)
	return dispatch.New(v, adapter, runner, opts...)
}

func encode(t *testing.T, resp domain.Response) string {
	t.Helper()
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(data)
}

func TestDispatch_BodylessEvent(t *testing.T) {
	resp := newDispatcher(t, nil).Dispatch(context.Background(), domain.Event{
		"random":  "metadata",
		"without": "a body",
	})

	require.True(t, resp.IsError())
	assert.Equal(t, "No grading data supplied in request body.", resp.Error.Message)
	assert.Equal(t, domain.ErrorKindMalformedInput, resp.ErrorKind())
}

func TestDispatch_NonJSONBody(t *testing.T) {
	resp := newDispatcher(t, nil).Dispatch(context.Background(), domain.Event{
		"random": "metadata",
		"body":   "{}}}{{{[][] this is not json.",
	})

	require.True(t, resp.IsError())
	assert.Equal(t, "Request body is not valid JSON.", resp.Error.Message)

	failure, ok := resp.Error.ErrorThrown.(*domain.DecodeFailure)
	require.True(t, ok, "error_thrown is %T", resp.Error.ErrorThrown)
	assert.Equal(t, domain.Location{Line: 1, Column: 3}, failure.Location)
}

func TestDispatch_RequestContract(t *testing.T) {
	d := newDispatcher(t, nil)

	resp := d.Dispatch(context.Background(), domain.Event{"body": `{"answer": "example", "params": {}}`})
	require.True(t, resp.IsError())
	assert.Equal(t, domain.MsgRequestViolation, resp.Error.Message)

	violation, ok := resp.Error.ErrorThrown.(*domain.Violation)
	require.True(t, ok)
	assert.Equal(t, "'response' is a required property", violation.Message)
	assert.JSONEq(t,
		`{"error":{"message":"Schema threw an error when validating the request body.","error_thrown":{"message":"'response' is a required property","schema_path":["required"],"instance_path":[]}}}`,
		encode(t, resp))
}

func TestDispatch_Grade(t *testing.T) {
	d := newDispatcher(t, nil)

	tests := []struct {
		name  string
		event domain.Event
	}{
		{
			name: "explicit command with params",
			event: domain.Event{
				"random":  "metadata",
				"body":    map[string]any{"response": "hello", "answer": "world!", "params": map[string]any{}},
				"headers": map[string]any{"command": "grade"},
			},
		},
		{
			name: "default command without params",
			event: domain.Event{
				"random": "metadata",
				"body":   map[string]any{"response": "hello", "answer": "world!"},
			},
		},
		{
			name:  "encoded body",
			event: domain.Event{"body": `{"response": "", "answer": ""}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Dispatch(context.Background(), tt.event)
			require.False(t, resp.IsError(), "%+v", resp.Error)
			assert.Equal(t, domain.CommandGrade, resp.Command)
			assert.JSONEq(t, `{"command":"grade","result":{"is_correct":true}}`, encode(t, resp))
		})
	}
}

func TestDispatch_ScoringFault(t *testing.T) {
	fn := func(context.Context, any, any, map[string]any) (grading.Result, error) {
		return nil, errors.New("unsupported answer format")
	}

	resp := newDispatcher(t, fn).Dispatch(context.Background(), domain.NewEvent(domain.CommandGrade, map[string]any{
		"response": "a", "answer": "b",
	}))

	require.True(t, resp.IsError())
	assert.JSONEq(t,
		`{"error":{"message":"An exception was raised while executing the grading function.","description":"unsupported answer format"}}`,
		encode(t, resp))
}

func TestDispatch_ScoringResultViolatesContract(t *testing.T) {
	fn := func(context.Context, any, any, map[string]any) (grading.Result, error) {
		return grading.Result{"feedback": "no verdict"}, nil
	}

	resp := newDispatcher(t, fn).Dispatch(context.Background(), domain.NewEvent("", map[string]any{
		"response": "a", "answer": "b",
	}))

	require.True(t, resp.IsError())
	assert.Equal(t, domain.MsgResponseViolation, resp.Error.Message)
	assert.Equal(t, "'is_correct' is a required property", resp.Error.ErrorThrown.(*domain.Violation).Message)
}

func TestDispatch_Healthcheck(t *testing.T) {
	resp := newDispatcher(t, nil).Dispatch(context.Background(), domain.Event{
		"random":  "metadata",
		"body":    "{}",
		"headers": map[string]any{"command": "healthcheck"},
	})

	require.False(t, resp.IsError(), "%+v", resp.Error)
	assert.Equal(t, domain.CommandHealthcheck, resp.Command)

	result, ok := resp.Result.(domain.HealthcheckResult)
	require.True(t, ok, "result is %T", resp.Result)
	assert.True(t, result.TestsPassed)
	assert.NotEmpty(t, result.Successes)
	assert.Empty(t, result.Failures)
	assert.Empty(t, result.Errors)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	resp := newDispatcher(t, nil).Dispatch(context.Background(), domain.Event{
		"random":  "metadata",
		"body":    "{}",
		"headers": map[string]any{"command": "not a command"},
	})

	require.True(t, resp.IsError())
	assert.Equal(t, "Unknown command 'not a command'. Only 'grade' and 'healthcheck' are allowed.", resp.Error.Message)
	assert.Equal(t, domain.ErrorKindUnknownCommand, resp.ErrorKind())
}

func TestDispatch_NullCommandIsUnknown(t *testing.T) {
	resp := newDispatcher(t, nil).Dispatch(context.Background(), domain.Event{
		"body":    `{"response": 1, "answer": 1}`,
		"headers": map[string]any{"command": nil},
	})

	require.True(t, resp.IsError())
	assert.Equal(t, "Unknown command 'None'. Only 'grade' and 'healthcheck' are allowed.", resp.Error.Message)
	assert.Equal(t, domain.ErrorKindUnknownCommand, resp.ErrorKind())
}

func TestDispatch_GateReplacesMalformedPayloads(t *testing.T) {
	payloads := map[string]any{
		"missing error":        map[string]any{},
		"typed but empty":      domain.Response{},
		"unknown command text": domain.Success("bogus", map[string]any{"is_correct": true}),
		"nil":                  nil,
		"not encodable":        map[string]any{"command": "grade", "result": map[string]any{"is_correct": make(chan int)}},
		"extra field":          map[string]any{"command": "grade", "result": map[string]any{"is_correct": true}, "hello": "world"},
	}

	for name, p := range payloads {
		t.Run(name, func(t *testing.T) {
			h := dispatch.HandlerFunc(func(context.Context, *dispatch.Invocation) any { return p })
			resp := newDispatcher(t, nil, dispatch.WithHandler(domain.CommandGrade, h)).
				Dispatch(context.Background(), domain.NewEvent(domain.CommandGrade, "{}"))

			require.True(t, resp.IsError())
			assert.Equal(t, domain.MsgResponseViolation, resp.Error.Message)
			assert.Equal(t, domain.ErrorKindContractViolation, resp.ErrorKind())
			_, ok := resp.Error.ErrorThrown.(*domain.Violation)
			assert.True(t, ok)
		})
	}
}

func TestDispatch_GateAcceptsUntypedConformingPayload(t *testing.T) {
	h := dispatch.HandlerFunc(func(context.Context, *dispatch.Invocation) any {
		return map[string]any{"command": "grade", "result": map[string]any{"is_correct": false, "score": 0.5}}
	})
	resp := newDispatcher(t, nil, dispatch.WithHandler(domain.CommandGrade, h)).
		Dispatch(context.Background(), domain.NewEvent(domain.CommandGrade, "{}"))

	require.False(t, resp.IsError())
	assert.Equal(t, domain.CommandGrade, resp.Command)
	assert.JSONEq(t, `{"command":"grade","result":{"is_correct":false,"score":0.5}}`, encode(t, resp))
}

func TestDispatch_Idempotent(t *testing.T) {
	d := newDispatcher(t, grading.Equal)

	property := func(response, answer string, command uint8) bool {
		cmds := []domain.Command{domain.CommandGrade, "", "other"}
		event := domain.NewEvent(cmds[int(command)%len(cmds)], map[string]any{"response": response, "answer": answer})

		first := encode(t, d.Dispatch(context.Background(), event))
		second := encode(t, d.Dispatch(context.Background(), event))
		return first == second
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 50}))
}

func TestDispatch_HealthcheckIdempotentExcludingTimings(t *testing.T) {
	d := newDispatcher(t, nil)
	event := domain.NewEvent(domain.CommandHealthcheck, nil)

	names := func(resp domain.Response) []string {
		result := resp.Result.(domain.HealthcheckResult)
		out := make([]string, len(result.Successes))
		for i, s := range result.Successes {
			out[i] = s.Name
		}
		return out
	}

	assert.Equal(t, names(d.Dispatch(context.Background(), event)), names(d.Dispatch(context.Background(), event)))
}

func TestDispatch_Concurrent(t *testing.T) {
	d := newDispatcher(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := d.Dispatch(context.Background(), domain.NewEvent("", `{"response": 1, "answer": 1}`))
			assert.False(t, resp.IsError())
		}()
	}
	wg.Wait()
}

func TestDispatch_MiddlewareOrder(t *testing.T) {
	var trace []string
	mark := func(name string) dispatch.Middleware {
		return func(next dispatch.Handler) dispatch.Handler {
			return dispatch.HandlerFunc(func(ctx context.Context, inv *dispatch.Invocation) any {
				trace = append(trace, name+">")
				out := next.Handle(ctx, inv)
				trace = append(trace, "<"+name)
				return out
			})
		}
	}

	d := newDispatcher(t, nil,
		dispatch.WithObserver(mark("outer")),
		dispatch.WithMiddleware(mark("a"), mark("b")))
	d.Dispatch(context.Background(), domain.NewEvent("", `{"response": 1, "answer": 1}`))

	assert.Equal(t, []string{"outer>", "a>", "b>", "<b", "<a", "<outer"}, trace)
}

func TestDispatch_InnerMiddlewareCannotBypassGate(t *testing.T) {
	corrupt := func(dispatch.Handler) dispatch.Handler {
		return dispatch.HandlerFunc(func(context.Context, *dispatch.Invocation) any {
			return map[string]any{"oops": true}
		})
	}

	resp := newDispatcher(t, nil, dispatch.WithMiddleware(corrupt)).
		Dispatch(context.Background(), domain.NewEvent(domain.CommandHealthcheck, nil))
	require.True(t, resp.IsError())
	assert.Equal(t, domain.MsgResponseViolation, resp.Error.Message)
}

type recordedMetric struct {
	command, outcome string
}

type fakeMetrics struct{ got []recordedMetric }

func (f *fakeMetrics) RecordInvocation(command, outcome string, _ time.Duration) {
	f.got = append(f.got, recordedMetric{command, outcome})
}

type captureSink struct{ envelopes []events.Envelope }

func (c *captureSink) Append(_ context.Context, env events.Envelope) error {
	c.envelopes = append(c.envelopes, env)
	return nil
}

func TestDispatch_Observers(t *testing.T) {
	metrics := &fakeMetrics{}
	sink := &captureSink{}
	d := newDispatcher(t, nil,
		dispatch.WithIDGenerator(func() string { return "inv-1" }),
		dispatch.WithObserver(
			dispatch.LoggingMiddleware(nil),
			dispatch.MetricsMiddleware(metrics),
			dispatch.EventsMiddleware(sink, "test", nil),
		))

	d.Dispatch(context.Background(), domain.NewEvent("", `{"response": 1, "answer": 1}`))
	d.Dispatch(context.Background(), domain.NewEvent("nope", nil))

	assert.Equal(t, []recordedMetric{
		{"grade", dispatch.OutcomeSuccess},
		{"unknown", string(domain.ErrorKindUnknownCommand)},
	}, metrics.got)

	require.Len(t, sink.envelopes, 2)
	assert.Equal(t, "inv-1", sink.envelopes[0].InvocationID)
	assert.Equal(t, events.TypeInvocationCompleted, sink.envelopes[0].Type)

	var payload events.InvocationCompleted
	require.NoError(t, json.Unmarshal(sink.envelopes[1].Payload, &payload))
	assert.Equal(t, "nope", payload.Command)
	assert.Equal(t, string(domain.ErrorKindUnknownCommand), payload.ErrorKind)
}

type brokenSink struct{}

func (brokenSink) Append(context.Context, events.Envelope) error { return errors.New("sink down") }

func TestDispatch_EventFailureDoesNotChangeResponse(t *testing.T) {
	d := newDispatcher(t, nil, dispatch.WithObserver(dispatch.EventsMiddleware(brokenSink{}, "test", nil)))

	resp := d.Dispatch(context.Background(), domain.NewEvent("", `{"response": 1, "answer": 1}`))
	assert.False(t, resp.IsError())
}
