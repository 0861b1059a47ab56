package domain

import (
	"encoding/json"
	"fmt"
)

// GradeRequest is the decoded body of a grade invocation. It is only built
// from bodies that already passed the request contract.
type GradeRequest struct {
	Response any            `json:"response"`
	Answer   any            `json:"answer"`
	Params   map[string]any `json:"params,omitempty"`
}

// NewGradeRequest builds a GradeRequest from a validated body.
// A missing params object is replaced by an empty one.
func NewGradeRequest(body any) (GradeRequest, error) {
	normalized, err := Normalize(body)
	if err != nil {
		return GradeRequest{}, err
	}

	obj, ok := normalized.(map[string]any)
	if !ok {
		return GradeRequest{}, fmt.Errorf("grade request body is %T, not an object", normalized)
	}

	req := GradeRequest{
		Response: obj["response"],
		Answer:   obj["answer"],
		Params:   map[string]any{},
	}
	if params, ok := obj["params"].(map[string]any); ok {
		req.Params = params
	}
	return req, nil
}

// MarshalJSON always emits params so the encoded request is self-describing.
func (r GradeRequest) MarshalJSON() ([]byte, error) {
	params := r.Params
	if params == nil {
		params = map[string]any{}
	}
	return json.Marshal(struct {
		Response any            `json:"response"`
		Answer   any            `json:"answer"`
		Params   map[string]any `json:"params"`
	}{r.Response, r.Answer, params})
}
