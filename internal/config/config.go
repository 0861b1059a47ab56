// Package config holds the runtime configuration of the grading gateway and
// loads it from the environment, an optional .env file and an optional
// config file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig indicates the loaded configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the full gateway configuration.
type Config struct {
	Contracts ContractsConfig `mapstructure:"contracts"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Events    EventsConfig    `mapstructure:"events"`
}

// ContractsConfig locates the request and response contract documents.
// Locations are builtin:<name>, a file path or file:// URL, an http(s) URL
// or an s3://bucket/key URL.
type ContractsConfig struct {
	RequestLocation  string        `mapstructure:"request_location" validate:"required"`
	ResponseLocation string        `mapstructure:"response_location" validate:"required"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
	S3Region         string        `mapstructure:"s3_region"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Format string `mapstructure:"format" validate:"oneof=json text"`
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// HTTPConfig configures the local HTTP adapter.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// TemporalConfig configures the Temporal worker adapter.
type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port" validate:"required,hostname_port"`
	Namespace string `mapstructure:"namespace" validate:"required"`
	TaskQueue string `mapstructure:"task_queue" validate:"required"`
}

// EventsConfig selects where invocation events are published.
type EventsConfig struct {
	Sink        string `mapstructure:"sink" validate:"oneof=none log sqs nats"`
	Source      string `mapstructure:"source" validate:"required"`
	SQSQueueURL string `mapstructure:"sqs_queue_url" validate:"required_if=Sink sqs"`
	NATSURL     string `mapstructure:"nats_url" validate:"required_if=Sink nats"`
	NATSSubject string `mapstructure:"nats_subject" validate:"required_if=Sink nats"`
}

// Validate checks every field constraint. The returned error wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
