package domain

import "fmt"

// Keys recognised inside an Event. Everything else is ignored.
const (
	HeadersKey    = "headers"
	BodyKey       = "body"
	CommandHeader = "command"
)

// Event is the opaque inbound value handed over by the runtime adapter.
// It may carry a "headers" mapping with an optional "command" entry and a
// "body" that is either encoded JSON text or an already structured mapping.
// The core only reads from an Event.
type Event map[string]any

// NullCommand is the command text of a present but null command header.
// It uses the None notation of violation messages.
const NullCommand Command = "None"

// Command derives the command selector from the event headers.
// Missing headers, headers that are not a mapping, and a missing command
// entry select DefaultCommand. Only absence defaults: a null entry becomes
// NullCommand and other non-string values are rendered with fmt, so both
// route to the unknown-command path.
func (e Event) Command() Command {
	headers, ok := asStringMap(e[HeadersKey])
	if !ok {
		return DefaultCommand
	}

	raw, ok := headers[CommandHeader]
	switch {
	case !ok:
		return DefaultCommand
	case raw == nil:
		return NullCommand
	}

	if s, ok := raw.(string); ok {
		return Command(s)
	}
	return Command(fmt.Sprint(raw))
}

// Body returns the raw body value and whether the key was present at all.
// A present-but-null body is reported as (nil, true).
func (e Event) Body() (any, bool) {
	v, ok := e[BodyKey]
	return v, ok
}

// NewEvent builds an event with an optional command header and body.
// An empty command leaves the headers out so the default applies.
func NewEvent(cmd Command, body any) Event {
	e := Event{BodyKey: body}
	if cmd != "" {
		e[HeadersKey] = map[string]any{CommandHeader: string(cmd)}
	}
	return e
}

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Event:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}
