package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/blitz/internal/config"
	"github.com/wesleyorama2/blitz/pkg/blitz"
)

func newRushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rush [URL]",
		Short: "Queue a rush and follow it until it completes",
		Long: `Queue a rush against URL and print its timeline as it runs.

Options come from flags, from a YAML or JSON file passed with --file, or both;
flags win over the file. Interrupting the command aborts the rush.

Examples:
  blitz rush http://example.com --pattern 1-250:60
  blitz rush --file rush.yaml --region oregon
  blitz rush http://example.com -p 1-10:30 -p 10-10:60 -H "X-Trace: 1"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRush,
	}

	cmd.Flags().StringP("file", "f", "", "Rush options file (YAML or JSON)")
	cmd.Flags().StringArrayP("pattern", "p", []string{}, "Concurrency interval start-end:seconds (can be used multiple times)")
	cmd.Flags().StringP("region", "r", "", "Region to rush from")
	cmd.Flags().String("referrer", "", "Referrer header sent by every hit")
	cmd.Flags().Int("status", 0, "Expected HTTP status of every hit")
	cmd.Flags().Int("request-timeout", 0, "Timeout of every hit in milliseconds")
	cmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers sent by every hit (can be used multiple times)")
	cmd.Flags().StringArrayP("cookie", "b", []string{}, "Cookies sent by every hit (can be used multiple times)")
	cmd.Flags().StringP("user-agent", "A", "", "User-Agent sent by every hit")
	cmd.Flags().String("basic-auth", "", "user:password for HTTP basic auth on every hit")
	cmd.Flags().StringArrayP("data", "d", []string{}, "Request body sent by every hit (can be used multiple times)")
	cmd.Flags().Int("follow", 0, "Number of redirects to follow")

	return cmd
}

func runRush(cmd *cobra.Command, args []string) error {
	options, err := rushOptions(cmd, args)
	if err != nil {
		return report(cmd, nil, err)
	}

	s, err := newSession(cmd)
	if err != nil {
		return report(cmd, nil, err)
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := s.newRush(blitz.WithOnQueued(func(jobID string) {
		fmt.Fprint(s.out, s.formatter.FormatQueued(jobID))
	}))

	err = s.watch(ctx, func(ctx context.Context, callback func(*blitz.Result)) error {
		return runner.Execute(ctx, options, callback)
	})
	if err != nil {
		if ctx.Err() != nil && runner.JobID() != "" {
			abortCtx, cancel := context.WithTimeout(context.Background(), s.settings.Timeout)
			runner.Abort(abortCtx)
			cancel()
			fmt.Fprint(s.out, s.formatter.FormatAborted(runner.JobID()))
		}
		return report(cmd, s, err)
	}
	return nil
}

// rushOptions builds the options document from --file and the flags that
// were explicitly set.
func rushOptions(cmd *cobra.Command, args []string) (map[string]interface{}, error) {
	base := map[string]interface{}{}
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		loaded, err := config.LoadRushOptions(file)
		if err != nil {
			return nil, err
		}
		base = loaded
	}

	overrides := map[string]interface{}{}
	if len(args) == 1 {
		overrides["url"] = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("pattern") {
		intervals, _ := flags.GetStringArray("pattern")
		pattern, err := config.ParsePattern(intervals)
		if err != nil {
			return nil, err
		}
		overrides["pattern"] = pattern
	}

	for flag, key := range map[string]string{
		"region":     "region",
		"referrer":   "referrer",
		"user-agent": "user-agent",
		"basic-auth": "user",
	} {
		if flags.Changed(flag) {
			value, _ := flags.GetString(flag)
			overrides[key] = value
		}
	}

	for flag, key := range map[string]string{
		"status":          "status",
		"request-timeout": "timeout",
		"follow":          "follow",
	} {
		if flags.Changed(flag) {
			value, _ := flags.GetInt(flag)
			overrides[key] = value
		}
	}

	for flag, key := range map[string]string{
		"header": "headers",
		"cookie": "cookies",
	} {
		if flags.Changed(flag) {
			values, _ := flags.GetStringArray(flag)
			overrides[key] = values
		}
	}

	if flags.Changed("data") {
		data, _ := flags.GetStringArray("data")
		overrides["content"] = blitz.Content{Data: data}
	}

	return config.MergeRushOptions(base, overrides), nil
}
