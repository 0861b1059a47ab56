// Package events provides the event infrastructure for invocation
// notifications. It defines the Envelope type that wraps every emitted event
// with consistent metadata and the EventSink interface for transmission.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps an event payload with routing and correlation metadata.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event for routing, e.g. "grader.invocation.completed".
	Type string `json:"type"`

	// Source identifies the emitting component, e.g. "grader-lambda".
	Source string `json:"source"`

	// Version enables schema evolution of the payload.
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey lets consumers drop duplicates. It is derived from the
	// invocation, so re-emitting the same invocation yields the same key.
	IdempotencyKey string `json:"idempotency_key"`

	// InvocationID correlates the event with the invocation logs.
	InvocationID string `json:"invocation_id"`

	// Payload contains the type-specific event data as JSON.
	Payload json.RawMessage `json:"payload"`
}

// Event types and the current payload version.
const (
	TypeInvocationCompleted = "grader.invocation.completed"
	PayloadVersion          = "1.0.0"
)

// InvocationCompleted is the payload of TypeInvocationCompleted.
type InvocationCompleted struct {
	Command        string `json:"command"`
	Outcome        string `json:"outcome"`
	ErrorKind      string `json:"error_kind,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	DurationMicros int64  `json:"duration_us"`
}

// NewEnvelope wraps payload for the given invocation.
func NewEnvelope(eventType, source, invocationID string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return Envelope{
		ID:             uuid.New().String(),
		Type:           eventType,
		Source:         source,
		Version:        PayloadVersion,
		Timestamp:      time.Now().UTC(),
		IdempotencyKey: uuid.NewSHA1(uuid.NameSpaceURL, []byte(eventType+"/"+invocationID)).String(),
		InvocationID:   invocationID,
		Payload:        data,
	}, nil
}

// EventSink emits events to downstream consumers.
//
// Append is best-effort: callers never fail an invocation because an event
// could not be delivered. Implementations should return quickly.
type EventSink interface {
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink discards all events.
type NoOpEventSink struct{}

// Append implements EventSink.Append with no-op behavior.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error {
	return nil
}

// NewNoOpEventSink creates a new no-op event sink.
func NewNoOpEventSink() EventSink {
	return &NoOpEventSink{}
}
