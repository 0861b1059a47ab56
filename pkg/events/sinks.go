package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/nats-io/nats.go"
)

// LogSink writes each event as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink logging at info level to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "events")}
}

// Append implements EventSink.
func (s *LogSink) Append(ctx context.Context, env Envelope) error {
	s.logger.InfoContext(ctx, "event",
		"event_id", env.ID,
		"event_type", env.Type,
		"invocation_id", env.InvocationID,
		"payload", string(env.Payload))
	return nil
}

// SQSSender is the subset of the SQS client used by SQSSink.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSink publishes events to an SQS queue.
type SQSSink struct {
	client   SQSSender
	queueURL string
}

// NewSQSSink returns a sink sending to queueURL.
func NewSQSSink(client SQSSender, queueURL string) *SQSSink {
	return &SQSSink{client: client, queueURL: queueURL}
}

// Append implements EventSink.
func (s *SQSSink) Append(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(env.Type),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send event to sqs: %w", err)
	}
	return nil
}

// Publisher is the subset of a NATS connection used by NATSSink.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSSink publishes events on a NATS subject.
type NATSSink struct {
	conn    Publisher
	subject string
}

// NewNATSSink returns a sink publishing to subject on conn.
func NewNATSSink(conn Publisher, subject string) *NATSSink {
	return &NATSSink{conn: conn, subject: subject}
}

// Append implements EventSink.
func (s *NATSSink) Append(_ context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := nats.NewMsg(s.subject)
	msg.Data = data
	msg.Header.Set("Event-Type", env.Type)
	msg.Header.Set(nats.MsgIdHdr, env.IdempotencyKey)
	if err := s.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish event to nats: %w", err)
	}
	return nil
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []EventSink

// Append implements EventSink.
func (m MultiSink) Append(ctx context.Context, env Envelope) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
