package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/httpapi"
	"github.com/ahrav/go-grader/internal/worker"
)

// lambdaCmd serves the dispatcher as a Lambda function
var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve the gateway as an AWS Lambda handler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		lambda.StartWithOptions(lambdaHandler(a.dispatcher), lambda.WithContext(cmd.Context()))
		return nil
	},
}

// serveCmd runs the local HTTP adapter
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gateway over HTTP",
	Long: `Starts a local HTTP server:
  POST /invoke   body is the raw request body, header "command" selects the command
  GET  /healthz  runs the self-test suite
  GET  /metrics  Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := httpapi.New(a.dispatcher,
			httpapi.WithGatherer(a.registry),
			httpapi.WithLogger(a.logger.With("component", "httpapi")),
		)
		a.logger.Info("http server listening", "addr", a.cfg.HTTP.Addr)
		return srv.ListenAndServe(cmd.Context(), a.cfg.HTTP.Addr)
	},
}

// workerCmd runs the Temporal worker
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a Temporal worker exposing the Dispatch activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := worker.Dial(a.cfg.Temporal, a.logger.With("component", "temporal"))
		if err != nil {
			return err
		}
		defer c.Close()

		w := worker.New(c, a.cfg.Temporal, a.dispatcher)
		a.logger.Info("temporal worker started",
			"task_queue", a.cfg.Temporal.TaskQueue,
			"namespace", a.cfg.Temporal.Namespace)

		interrupt := make(chan interface{})
		go func() {
			<-cmd.Context().Done()
			close(interrupt)
		}()
		return w.Run(interrupt)
	},
}

type dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) domain.Response
}

// lambdaHandler adapts the dispatcher to the Lambda handler signature.
// Every outcome is a response, so the handler never returns an error.
func lambdaHandler(d dispatcher) func(context.Context, domain.Event) (domain.Response, error) {
	return func(ctx context.Context, event domain.Event) (domain.Response, error) {
		return d.Dispatch(ctx, event), nil
	}
}
