package config

import "time"

// Contract defaults.
const (
	DefaultRequestLocation  = "builtin:request"
	DefaultResponseLocation = "builtin:response"
	DefaultFetchTimeout     = 10 * time.Second
)

// Adapter defaults.
const (
	DefaultLogFormat         = "json"
	DefaultLogLevel          = "info"
	DefaultHTTPAddr          = "127.0.0.1:8080"
	DefaultTemporalHostPort  = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "grader"
	DefaultEventSink         = "none"
	DefaultEventSource       = "grader"
	DefaultNATSSubject       = "grader.events"
)

// DefaultConfig returns a configuration that serves the embedded contracts
// and emits no events.
func DefaultConfig() *Config {
	return &Config{
		Contracts: ContractsConfig{
			RequestLocation:  DefaultRequestLocation,
			ResponseLocation: DefaultResponseLocation,
			FetchTimeout:     DefaultFetchTimeout,
		},
		Log: LogConfig{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
		},
		HTTP: HTTPConfig{
			Addr: DefaultHTTPAddr,
		},
		Temporal: TemporalConfig{
			HostPort:  DefaultTemporalHostPort,
			Namespace: DefaultTemporalNamespace,
			TaskQueue: DefaultTaskQueue,
		},
		Events: EventsConfig{
			Sink:        DefaultEventSink,
			Source:      DefaultEventSource,
			NATSSubject: DefaultNATSSubject,
		},
	}
}
