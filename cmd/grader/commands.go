package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-grader/internal/config"
	"github.com/ahrav/go-grader/internal/domain"
	"github.com/ahrav/go-grader/internal/scenario"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

var eventFile string

// invokeCmd dispatches a single event
var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Dispatch one event and print the response",
	Long: `Reads one invocation event as JSON and prints the response envelope.

Example:
  echo '{"body": "{\"response\": 1, \"answer\": 1}"}' | grader invoke
  grader invoke --event event.json`,
	Args: cobra.NoArgs,
	RunE: runInvoke,
}

// healthcheckCmd runs the self-test suite
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Run the self-test suite and print the healthcheck response",
	Args:  cobra.NoArgs,
	RunE:  runHealthcheck,
}

// checkCmd replays scenario files
var checkCmd = &cobra.Command{
	Use:   "check [scenarios.toml...]",
	Short: "Replay scenario files against the gateway",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	invokeCmd.Flags().StringVar(&eventFile, "event", "-", "event JSON file, - for stdin")
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	return newApp(cmd.Context(), bootstrapOptions{
		load:      config.LoadOptions{ConfigFile: configFile, EnvFile: envFile},
		logFormat: logFormat,
		logLevel:  logLevel,
		logOutput: cmd.ErrOrStderr(),
	})
}

func runInvoke(cmd *cobra.Command, _ []string) error {
	event, err := readEvent(cmd.InOrStdin(), eventFile)
	if err != nil {
		return err
	}

	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return writeJSON(cmd.OutOrStdout(), a.dispatcher.Dispatch(cmd.Context(), event))
}

func runHealthcheck(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	resp := a.dispatcher.Dispatch(cmd.Context(), domain.NewEvent(domain.CommandHealthcheck, nil))
	if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if !healthy(resp) {
		return fmt.Errorf("healthcheck failed")
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		scenarios, err := scenario.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, bold(path))
		for _, o := range scenario.Run(cmd.Context(), a.dispatcher, scenarios) {
			if o.Passed() {
				fmt.Fprintf(out, "  %s %s\n", green("PASS"), o.Name)
				continue
			}
			failed++
			fmt.Fprintf(out, "  %s %s\n", red("FAIL"), o.Name)
			for _, p := range o.Problems {
				fmt.Fprintf(out, "       %s\n", gray(p))
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d scenario(s) failed", failed)
	}
	return nil
}

func readEvent(stdin io.Reader, path string) (domain.Event, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open event file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var event domain.Event
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// healthy reports whether resp is a healthcheck result with tests_passed.
func healthy(resp domain.Response) bool {
	data, err := json.Marshal(resp)
	if err != nil {
		return false
	}
	var decoded struct {
		Result struct {
			TestsPassed bool `json:"tests_passed"`
		} `json:"result"`
	}
	return json.Unmarshal(data, &decoded) == nil && decoded.Result.TestsPassed
}
