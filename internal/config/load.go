package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g.
// GRADER_CONTRACTS_REQUEST_LOCATION.
const EnvPrefix = "GRADER"

// Legacy environment variables still honoured for the contract locations.
const (
	LegacyRequestSchemaEnv  = "REQUEST_SCHEMA_URL"
	LegacyResponseSchemaEnv = "RESPONSE_SCHEMA_URL"
)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an optional YAML, JSON or TOML file.
	ConfigFile string
	// EnvFile is loaded into the process environment before reading it.
	// A missing file is ignored.
	EnvFile string
}

// Load builds the configuration from defaults, the config file and the
// environment, in increasing precedence, and validates it.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	if err := v.BindEnv("contracts.request_location", EnvPrefix+"_CONTRACTS_REQUEST_LOCATION", LegacyRequestSchemaEnv); err != nil {
		return nil, err
	}
	if err := v.BindEnv("contracts.response_location", EnvPrefix+"_CONTRACTS_RESPONSE_LOCATION", LegacyResponseSchemaEnv); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("contracts.request_location", d.Contracts.RequestLocation)
	v.SetDefault("contracts.response_location", d.Contracts.ResponseLocation)
	v.SetDefault("contracts.fetch_timeout", d.Contracts.FetchTimeout)
	v.SetDefault("contracts.s3_region", d.Contracts.S3Region)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("temporal.host_port", d.Temporal.HostPort)
	v.SetDefault("temporal.namespace", d.Temporal.Namespace)
	v.SetDefault("temporal.task_queue", d.Temporal.TaskQueue)
	v.SetDefault("events.sink", d.Events.Sink)
	v.SetDefault("events.source", d.Events.Source)
	v.SetDefault("events.sqs_queue_url", d.Events.SQSQueueURL)
	v.SetDefault("events.nats_url", d.Events.NATSURL)
	v.SetDefault("events.nats_subject", d.Events.NATSSubject)
}
