// Command grader serves a grading function behind the uniform invocation
// contract, as a one-shot CLI, an AWS Lambda handler, a local HTTP server or
// a Temporal worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	envFile    string
	logFormat  string
	logLevel   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "grader",
	Short: "Grading function gateway",
	Long: `grader exposes a single grading function through a fixed request and
response contract. Every invocation resolves to a response envelope that
satisfies the response contract.

Commands:
  grade        run the grading function (default command)
  healthcheck  run the built-in self-test suite`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (json or text)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override")

	rootCmd.AddCommand(invokeCmd, healthcheckCmd, checkCmd, lambdaCmd, serveCmd, workerCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
