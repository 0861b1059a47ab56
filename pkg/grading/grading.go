// Package grading defines the contract between the gateway and the scoring
// function it hosts.
//
// Deployments replace AlwaysCorrect with their own Func. The gateway
// guarantees that response and answer are non-null JSON values and that
// params is a non-nil object; it converts any returned error or panic into
// the error envelope, so a Func never needs to recover.
package grading

import "context"

// Result is the JSON object returned by a scoring function. It must contain
// a boolean "is_correct" entry and may carry any other feedback fields.
type Result map[string]any

// IsCorrectKey is the mandatory entry of every Result.
const IsCorrectKey = "is_correct"

// Func scores a response against an answer.
type Func func(ctx context.Context, response, answer any, params map[string]any) (Result, error)

// Correct builds a Result with is_correct set and the given extra fields.
func Correct(ok bool, feedback map[string]any) Result {
	r := make(Result, len(feedback)+1)
	for k, v := range feedback {
		r[k] = v
	}
	r[IsCorrectKey] = ok
	return r
}

// AlwaysCorrect is the placeholder scoring function: every response is
// marked correct.
func AlwaysCorrect(context.Context, any, any, map[string]any) (Result, error) {
	return Result{IsCorrectKey: true}, nil
}

// Equal marks a response correct when it is deeply equal to the answer once
// both are decoded from JSON.
func Equal(_ context.Context, response, answer any, _ map[string]any) (Result, error) {
	return Correct(jsonEqual(response, answer), nil), nil
}
