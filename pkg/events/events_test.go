package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-grader/pkg/events"
)

func newEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(events.TypeInvocationCompleted, "test", "inv-1", events.InvocationCompleted{
		Command: "grade",
		Outcome: "success",
	})
	require.NoError(t, err)
	return env
}

func TestNewEnvelope(t *testing.T) {
	a := newEnvelope(t)
	b := newEnvelope(t)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.IdempotencyKey, b.IdempotencyKey, "key is derived from the invocation")
	assert.Equal(t, events.PayloadVersion, a.Version)
	assert.JSONEq(t, `{"command":"grade","outcome":"success","duration_us":0}`, string(a.Payload))

	_, err := events.NewEnvelope("x", "test", "inv", func() {})
	assert.Error(t, err)
}

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSSink(t *testing.T) {
	fake := &fakeSQS{}
	sink := events.NewSQSSink(fake, "https://sqs.local/queue")
	env := newEnvelope(t)

	require.NoError(t, sink.Append(context.Background(), env))
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "https://sqs.local/queue", aws.ToString(fake.inputs[0].QueueUrl))

	var got events.Envelope
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(fake.inputs[0].MessageBody)), &got))
	assert.Equal(t, env.ID, got.ID)
	assert.Equal(t, env.Type, aws.ToString(fake.inputs[0].MessageAttributes["event_type"].StringValue))

	fake.err = errors.New("throttled")
	assert.Error(t, sink.Append(context.Background(), env))
}

type fakePublisher struct{ msgs []*nats.Msg }

func (f *fakePublisher) PublishMsg(m *nats.Msg) error {
	f.msgs = append(f.msgs, m)
	return nil
}

func TestNATSSink(t *testing.T) {
	pub := &fakePublisher{}
	env := newEnvelope(t)

	require.NoError(t, events.NewNATSSink(pub, "grader.events").Append(context.Background(), env))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "grader.events", pub.msgs[0].Subject)
	assert.Equal(t, env.IdempotencyKey, pub.msgs[0].Header.Get(nats.MsgIdHdr))
}

type failingSink struct{}

func (failingSink) Append(context.Context, events.Envelope) error { return errors.New("down") }

func TestMultiSink(t *testing.T) {
	pub := &fakePublisher{}
	multi := events.MultiSink{events.NewNoOpEventSink(), failingSink{}, events.NewNATSSink(pub, "s")}

	err := multi.Append(context.Background(), newEnvelope(t))
	assert.EqualError(t, err, "down")
	assert.Len(t, pub.msgs, 1, "later sinks still receive the event")
}
