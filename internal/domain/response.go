package domain

import "encoding/json"

// Fixed messages of the error envelope. Callers match on these verbatim.
const (
	MsgNoBody            = "No grading data supplied in request body."
	MsgBodyNotJSON       = "Request body is not valid JSON."
	MsgBodyNotText       = "Request body is not text."
	MsgRequestViolation  = "Schema threw an error when validating the request body."
	MsgResponseViolation = "Schema threw an error when validating the response body."
	MsgGradingFuncRaised = "An exception was raised while executing the grading function."
)

// ErrorKind classifies an error envelope for logging and metrics.
// It is never serialized; the wire contract only knows the message fields.
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindMalformedInput    ErrorKind = "malformed_input"
	ErrorKindContractViolation ErrorKind = "contract_violation"
	ErrorKindScoringFault      ErrorKind = "scoring_fault"
	ErrorKindUnknownCommand    ErrorKind = "unknown_command"
)

// ErrorDetail is the body of the error branch of a Response.
// ErrorThrown carries nested detail such as a *Violation or a *DecodeFailure;
// Description carries free-form fault text from the scoring function.
type ErrorDetail struct {
	Message     string    `json:"message"`
	ErrorThrown any       `json:"error_thrown,omitempty"`
	Description string    `json:"description,omitempty"`
	Kind        ErrorKind `json:"-"`
}

// Violation describes the first schema rule an instance failed.
// SchemaPath locates the rule in the schema document and InstancePath the
// offending value in the instance; object keys are strings and array
// indices are ints.
type Violation struct {
	Message      string `json:"message"`
	SchemaPath   []any  `json:"schema_path"`
	InstancePath []any  `json:"instance_path"`
}

// DecodeFailure describes why an encoded request body could not be decoded.
type DecodeFailure struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

// Location is a 1-based line and column inside the encoded body.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Response is the single outbound shape of an invocation.
// Exactly one branch is populated: Command and Result on success, Error on
// failure. The dispatcher guarantees the serialized form satisfies the
// response contract.
type Response struct {
	Command Command      `json:"command,omitempty"`
	Result  any          `json:"result,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// Success wraps a handler result in the success branch.
func Success(cmd Command, result any) Response {
	return Response{Command: cmd, Result: result}
}

// Failure wraps an error detail in the error branch.
func Failure(detail *ErrorDetail) Response {
	return Response{Error: detail}
}

// IsError reports whether r is on the error branch.
func (r Response) IsError() bool { return r.Error != nil }

// ErrorKind returns the classification of an error response, or
// ErrorKindNone on success.
func (r Response) ErrorKind() ErrorKind {
	if r.Error == nil {
		return ErrorKindNone
	}
	return r.Error.Kind
}

// MarshalJSON emits result whenever it is non-nil, including empty objects
// that the omitempty tag would otherwise drop.
func (r Response) MarshalJSON() ([]byte, error) {
	type wire struct {
		Command Command          `json:"command,omitempty"`
		Result  *json.RawMessage `json:"result,omitempty"`
		Error   *ErrorDetail     `json:"error,omitempty"`
	}

	w := wire{Command: r.Command, Error: r.Error}
	if r.Result != nil {
		raw, err := json.Marshal(r.Result)
		if err != nil {
			return nil, err
		}
		msg := json.RawMessage(raw)
		w.Result = &msg
	}
	return json.Marshal(w)
}
