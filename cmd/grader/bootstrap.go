package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahrav/go-grader/internal/config"
	"github.com/ahrav/go-grader/internal/contract"
	"github.com/ahrav/go-grader/internal/contract/source"
	"github.com/ahrav/go-grader/internal/dispatch"
	"github.com/ahrav/go-grader/internal/healthcheck"
	"github.com/ahrav/go-grader/internal/observability"
	"github.com/ahrav/go-grader/internal/scoring"
	"github.com/ahrav/go-grader/pkg/events"
	"github.com/ahrav/go-grader/pkg/grading"
)

// app is the wired gateway shared by every subcommand.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	dispatcher *dispatch.Dispatcher
	closers    []func()
}

// bootstrapOptions carries the process-level inputs of newApp.
type bootstrapOptions struct {
	load      config.LoadOptions
	logFormat string
	logLevel  string
	logOutput io.Writer
	grade     grading.Func
}

// newApp loads the configuration and contracts and builds the dispatcher.
// A contract that cannot be fetched or compiled is returned as an error.
func newApp(ctx context.Context, opts bootstrapOptions) (*app, error) {
	cfg, err := config.Load(opts.load)
	if err != nil {
		return nil, err
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, err := observability.NewLogger(opts.logOutput, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	var awsCfg *aws.Config
	if needsAWS(cfg) {
		loaded, err := loadAWSConfig(ctx, cfg.Contracts.S3Region)
		if err != nil {
			return nil, err
		}
		awsCfg = &loaded
	}

	routerOpts := []source.Option{
		source.WithLogger(logger.With("component", "contract-source")),
		source.WithBackend("http", source.NewHTTP(cfg.Contracts.FetchTimeout)),
		source.WithBackend("https", source.NewHTTP(cfg.Contracts.FetchTimeout)),
	}
	if awsCfg != nil {
		routerOpts = append(routerOpts, source.WithBackend("s3", source.NewS3(s3.NewFromConfig(*awsCfg))))
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Contracts.FetchTimeout)
	defer cancel()
	set, err := contract.Load(loadCtx, source.NewRouter(routerOpts...), contract.Locations{
		Request:  cfg.Contracts.RequestLocation,
		Response: cfg.Contracts.ResponseLocation,
	})
	if err != nil {
		return nil, err
	}

	sink, err := a.eventSink(awsCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	metrics := observability.MustNewMetrics(a.registry)
	validator := contract.NewValidator(set)
	adapter := scoring.NewAdapter(opts.grade, scoring.WithLogger(logger.With("component", "scoring")))
	runner, err := healthcheck.NewRunner(
		healthcheck.DefaultSuite(validator, adapter),
		healthcheck.WithLogger(logger.With("component", "healthcheck")),
		healthcheck.WithObserver(metrics.ObserveCase),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.dispatcher = dispatch.New(validator, adapter, runner,
		dispatch.WithLogger(logger.With("component", "dispatch")),
		dispatch.WithObserver(
			dispatch.LoggingMiddleware(logger.With("component", "dispatch")),
			dispatch.MetricsMiddleware(metrics),
			dispatch.EventsMiddleware(sink, cfg.Events.Source, logger.With("component", "events")),
		),
	)
	return a, nil
}

// Close releases the connections opened by newApp.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) eventSink(awsCfg *aws.Config) (events.EventSink, error) {
	switch a.cfg.Events.Sink {
	case "log":
		return events.NewLogSink(a.logger.With("component", "events")), nil
	case "sqs":
		if awsCfg == nil {
			return nil, errors.New("sqs event sink requires aws configuration")
		}
		return events.NewSQSSink(sqs.NewFromConfig(*awsCfg), a.cfg.Events.SQSQueueURL), nil
	case "nats":
		conn, err := nats.Connect(a.cfg.Events.NATSURL, nats.Name("grader"))
		if err != nil {
			return nil, fmt.Errorf("connect to nats at %s: %w", a.cfg.Events.NATSURL, err)
		}
		a.closers = append(a.closers, conn.Close)
		return events.NewNATSSink(conn, a.cfg.Events.NATSSubject), nil
	default:
		return events.NewNoOpEventSink(), nil
	}
}

// needsAWS reports whether any configured component talks to AWS.
func needsAWS(cfg *config.Config) bool {
	if cfg.Events.Sink == "sqs" {
		return true
	}
	for _, loc := range []string{cfg.Contracts.RequestLocation, cfg.Contracts.ResponseLocation} {
		if u, err := url.Parse(loc); err == nil && strings.EqualFold(u.Scheme, "s3") {
			return true
		}
	}
	return false
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
