// Package scenario replays invocation scenarios described in TOML files
// against a dispatcher and compares the responses with expectations.
//
//	[[scenarios]]
//	name = "missing response"
//	body = '{"answer": "example"}'
//
//	[scenarios.expect]
//	error_message = "Schema threw an error when validating the request body."
//	violation = "'response' is a required property"
package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ahrav/go-grader/internal/domain"
)

// Scenario is one invocation and its expected response.
type Scenario struct {
	Name    string `toml:"name"`
	Command string `toml:"command"`
	// Body is sent as encoded text. NoBody omits the body key entirely.
	Body   string `toml:"body"`
	NoBody bool   `toml:"no_body"`
	Expect Expect `toml:"expect"`
}

// Expect lists the checks applied to a response. Empty fields are not
// checked.
type Expect struct {
	Command      string         `toml:"command"`
	ErrorMessage string         `toml:"error_message"`
	Violation    string         `toml:"violation"`
	Description  string         `toml:"description"`
	Result       map[string]any `toml:"result"`
	TestsPassed  *bool          `toml:"tests_passed"`
}

type file struct {
	Scenarios []Scenario `toml:"scenarios"`
}

// Load reads the scenarios of a TOML file.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML scenario data.
func Parse(data []byte) ([]Scenario, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	for i, s := range f.Scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i+1)
		}
	}
	return f.Scenarios, nil
}

// Event builds the invocation event of s.
func (s Scenario) Event() domain.Event {
	event := domain.Event{}
	if s.Command != "" {
		event[domain.HeadersKey] = map[string]any{domain.CommandHeader: s.Command}
	}
	if !s.NoBody {
		event[domain.BodyKey] = s.Body
	}
	return event
}

// Dispatcher is the invocation boundary under test.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) domain.Response
}

// Outcome is the verdict for one scenario.
type Outcome struct {
	Name     string
	Problems []string
	Response domain.Response
}

// Passed reports whether every expectation held.
func (o Outcome) Passed() bool { return len(o.Problems) == 0 }

// Run replays every scenario in order.
func Run(ctx context.Context, d Dispatcher, scenarios []Scenario) []Outcome {
	out := make([]Outcome, 0, len(scenarios))
	for _, s := range scenarios {
		resp := d.Dispatch(ctx, s.Event())
		out = append(out, Outcome{
			Name:     s.Name,
			Problems: Check(s.Expect, resp),
			Response: resp,
		})
	}
	return out
}

// Check compares resp against e and describes every mismatch.
func Check(e Expect, resp domain.Response) []string {
	var problems []string
	mismatch := func(field string, want, got any) {
		problems = append(problems, fmt.Sprintf("%s: want %v, got %v", field, want, got))
	}

	generic, err := toGeneric(resp)
	if err != nil {
		return []string{fmt.Sprintf("response is not encodable: %v", err)}
	}
	errObj, _ := generic["error"].(map[string]any)
	result, _ := generic["result"].(map[string]any)

	if e.Command != "" && string(resp.Command) != e.Command {
		mismatch("command", e.Command, resp.Command)
	}
	if e.ErrorMessage != "" && errObj["message"] != e.ErrorMessage {
		mismatch("error.message", e.ErrorMessage, errObj["message"])
	}
	if e.Description != "" && errObj["description"] != e.Description {
		mismatch("error.description", e.Description, errObj["description"])
	}
	if e.Violation != "" {
		thrown, _ := errObj["error_thrown"].(map[string]any)
		if thrown["message"] != e.Violation {
			mismatch("error.error_thrown.message", e.Violation, thrown["message"])
		}
	}
	if e.TestsPassed != nil && result["tests_passed"] != *e.TestsPassed {
		mismatch("result.tests_passed", *e.TestsPassed, result["tests_passed"])
	}

	want, err := toGeneric(e.Result)
	if err != nil {
		return append(problems, fmt.Sprintf("expected result is not encodable: %v", err))
	}
	for key, w := range want {
		if g, ok := result[key]; !ok || !reflect.DeepEqual(g, w) {
			mismatch("result."+key, w, g)
		}
	}
	return problems
}

// toGeneric round-trips v through JSON so TOML and response values compare
// on equal footing.
func toGeneric(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
