package worker

import (
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-grader/internal/config"
)

// Dial connects to the Temporal frontend described by cfg.
func Dial(cfg config.TemporalConfig, logger *slog.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    log.NewStructuredLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to temporal at %s: %w", cfg.HostPort, err)
	}
	return c, nil
}

// New creates a worker on cfg.TaskQueue with the gateway registered.
func New(c client.Client, cfg config.TemporalConfig, d Dispatcher) sdkworker.Worker {
	w := sdkworker.New(c, cfg.TaskQueue, sdkworker.Options{})
	RegisterAll(w, d)
	return w
}
