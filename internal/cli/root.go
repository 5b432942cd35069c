package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree with fresh flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blitz",
		Short:   "Run and watch load tests on blitz.io from the terminal",
		Version: version,
		Long: `Blitz queues rushes (load tests that ramp concurrency against a URL)
on the blitz.io service, streams their progress while they run and summarizes
the outcome when they complete.

Credentials come from --user and --api-key, the BLITZ_USER and BLITZ_API_KEY
environment variables, or a config file passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (YAML, JSON or TOML)")
	flags.String("user", "", "Account user name")
	flags.String("api-key", "", "Account API key")
	flags.String("host", "", "Service host (default blitz.io)")
	flags.Int("port", 0, "Service port (default 80)")
	flags.String("scheme", "", "Service scheme, http or https (default http)")
	flags.Duration("timeout", 0, "Timeout of every request to the service (default 30s)")
	flags.Duration("poll-interval", 0, "Wait between status requests (default 2s)")
	flags.BoolP("verbose", "v", false, "Enable verbose output and debug logging")
	flags.Bool("no-color", false, "Disable colored output")
	flags.StringP("output", "o", "text", "Output format: text, json or yaml")

	cmd.AddCommand(newRushCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newAbortCmd())

	return cmd
}

// reportedError is an error that has already been written to the output.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the root command. Errors not already rendered by a command
// are printed to stderr.
func Execute() error {
	err := RootCmd.Execute()
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
