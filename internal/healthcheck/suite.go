package healthcheck

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-grader/internal/contract"
	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/scoring"
)

// Case name prefixes of the default suite.
const (
	RequestGroup  = "RequestValidation"
	ResponseGroup = "ResponseValidation"
	GradingGroup  = "GradingFunction"
)

// DefaultSuite returns the built-in self-test: request contract cases,
// response contract cases and the grading function baseline, in that order.
func DefaultSuite(v *contract.Validator, adapter *scoring.Adapter) []Case {
	var cases []Case
	cases = append(cases, RequestCases(v)...)
	cases = append(cases, ResponseCases(v)...)
	cases = append(cases, GradingCases(adapter)...)
	return cases
}

// contractCase checks that body is rejected with the given first-violation
// message, or accepted when want is empty.
type contractCase struct {
	name string
	body map[string]any
	want string
}

func contractCases(group string, id contract.ID, v *contract.Validator, table []contractCase) []Case {
	cases := make([]Case, 0, len(table))
	for _, tc := range table {
		cases = append(cases, Case{
			Name: group + "/" + tc.name,
			Run: func(t *T) error {
				detail := v.Validate(id, tc.body)
				if tc.want == "" {
					assert.Nil(t, detail)
					return nil
				}

				require.NotNil(t, detail)
				assert.Equal(t, id.Message(), detail.Message)
				violation, ok := detail.ErrorThrown.(*domain.Violation)
				require.True(t, ok, "error_thrown is %T", detail.ErrorThrown)
				assert.Equal(t, tc.want, violation.Message)
				return nil
			},
		})
	}
	return cases
}

// RequestCases exercises the request contract.
func RequestCases(v *contract.Validator) []Case {
	return contractCases(RequestGroup, contract.Request, v, []contractCase{
		{
			name: "EmptyRequestBody",
			body: map[string]any{},
			want: "'response' is a required property",
		},
		{
			name: "MissingResponse",
			body: map[string]any{"answer": "example", "params": map[string]any{}},
			want: "'response' is a required property",
		},
		{
			name: "NullResponse",
			body: map[string]any{"response": nil, "answer": "example", "params": map[string]any{}},
			want: "None should not be valid under {'type': 'null'}",
		},
		{
			name: "MissingAnswer",
			body: map[string]any{"response": "example", "params": map[string]any{}},
			want: "'answer' is a required property",
		},
		{
			name: "NullAnswer",
			body: map[string]any{"response": "example", "answer": nil, "params": map[string]any{}},
			want: "None should not be valid under {'type': 'null'}",
		},
		{
			name: "BadParams",
			body: map[string]any{"response": "example", "answer": "example", "params": 2},
			want: "2 is not of type 'object'",
		},
		{
			name: "ExtraFields",
			body: map[string]any{"response": "example", "answer": "example", "params": map[string]any{}, "hello": "world"},
			want: "Additional properties are not allowed ('hello' was unexpected)",
		},
		{
			name: "ValidRequestBody",
			body: map[string]any{"response": "", "answer": ""},
		},
	})
}

// ResponseCases exercises the response contract.
func ResponseCases(v *contract.Validator) []Case {
	correct := map[string]any{"is_correct": true}

	return contractCases(ResponseGroup, contract.Response, v, []contractCase{
		{
			name: "EmptyResponseBody",
			body: map[string]any{},
			want: "'error' is a required property",
		},
		{
			name: "ExtraFields",
			body: map[string]any{"command": "grade", "result": correct, "hello": "world"},
			want: "Additional properties are not allowed ('hello' was unexpected)",
		},
		{
			name: "BadCommandWrongType",
			body: map[string]any{"command": map[string]any{"not": "a command"}, "result": map[string]any{}},
			want: "{'not': 'a command'} is not of type 'string'",
		},
		{
			name: "BadCommandUnallowedOption",
			body: map[string]any{"command": "not a command", "result": map[string]any{}},
			want: "'not a command' is not one of ['grade', 'healthcheck']",
		},
		{
			name: "BadResultWrongType",
			body: map[string]any{"command": "grade", "result": "an object"},
			want: "'an object' is not of type 'object'",
		},
		{
			name: "BadResultMissingIsCorrectWhenGrading",
			body: map[string]any{"command": "grade", "result": map[string]any{"feedback": "some feedback"}},
			want: "'is_correct' is a required property",
		},
		{
			name: "BadResultMissingTestsPassedWhenCheckingHealth",
			body: map[string]any{"command": "healthcheck", "result": map[string]any{
				"successes": []any{}, "failures": []any{}, "errors": []any{},
			}},
			want: "'tests_passed' is a required property",
		},
		{
			name: "BadErrorWrongType",
			body: map[string]any{"error": "an object"},
			want: "'an object' is not of type 'object'",
		},
		{
			name: "BadErrorMissingMessage",
			body: map[string]any{"error": map[string]any{"error_thrown": map[string]any{"message": "something specific"}}},
			want: "'message' is a required property",
		},
		{
			name: "MissingCommand",
			body: map[string]any{"result": correct},
			want: "'command' is a required property",
		},
		{
			name: "MissingResult",
			body: map[string]any{"command": "grade"},
			want: "'error' is a required property",
		},
		{
			name: "MissingCommandWithError",
			body: map[string]any{"result": correct, "error": map[string]any{"message": "Some useful information."}},
			want: "'command' is a required property",
		},
		{
			name: "ValidResponseWithError",
			body: map[string]any{"error": map[string]any{"message": "Something went wrong."}},
		},
		{
			name: "ValidResponseWithGradeCommand",
			body: map[string]any{"command": "grade", "result": correct},
		},
		{
			name: "ValidResponseWithHealthcheckCommand",
			body: map[string]any{"command": "healthcheck", "result": map[string]any{
				"tests_passed": true,
				"successes":    []any{map[string]any{"name": "test_example", "time": 123}},
				"failures":     []any{},
				"errors":       []any{},
			}},
		},
	})
}

// GradingCases checks the baseline behaviour of the hosted scoring function.
// Faults raised by the function are reported only through the case result.
func GradingCases(adapter *scoring.Adapter) []Case {
	adapter = adapter.Quiet()
	return []Case{
		{
			Name: GradingGroup + "/ReturnsIsCorrectTrue",
			Run: func(t *T) error {
				out := adapter.Grade(t.Context(), domain.GradeRequest{Params: map[string]any{}})
				require.True(t, out.OK(), "grading function raised: %+v", out.Fault)
				assert.Equal(t, true, out.Result["is_correct"])
				return nil
			},
		},
	}
}
