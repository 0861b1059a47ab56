// Package domain defines the invocation contract of the grading gateway: the
// inbound Event, the Command it selects, and the Response envelope every
// invocation resolves to. Types here carry no behaviour beyond accessors and
// constructors; validation against the JSON contracts lives in the contract
// package.
package domain

import "fmt"

// Command selects the handler path for a single invocation.
// Only CommandGrade and CommandHealthcheck are routable; any other value is
// preserved verbatim so the unknown-command error can echo it back.
type Command string

const (
	// CommandGrade runs the request through parsing, request validation and
	// the scoring function.
	CommandGrade Command = "grade"

	// CommandHealthcheck runs the built-in self-test suite.
	CommandHealthcheck Command = "healthcheck"
)

// DefaultCommand is selected when the event carries no command header.
const DefaultCommand = CommandGrade

// IsKnown reports whether c names a routable command.
func (c Command) IsKnown() bool {
	switch c {
	case CommandGrade, CommandHealthcheck:
		return true
	default:
		return false
	}
}

// String returns the raw command text.
func (c Command) String() string { return string(c) }

// UnknownCommandMessage renders the error message returned for commands
// outside the routable set.
func UnknownCommandMessage(c Command) string {
	return fmt.Sprintf("Unknown command '%s'. Only '%s' and '%s' are allowed.",
		string(c), CommandGrade, CommandHealthcheck)
}
