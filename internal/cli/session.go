package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/blitz/internal/config"
	"github.com/wesleyorama2/blitz/internal/output"
	"github.com/wesleyorama2/blitz/pkg/blitz"
)

// session is everything a command needs to talk to the service and report
// back.
type session struct {
	settings  *config.Settings
	logger    *zap.Logger
	client    *blitz.Client
	formatter output.FormatProvider
	out       io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	format, _ := cmd.Flags().GetString("output")
	outputFormat, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(v)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if settings.Verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	out := cmd.OutOrStdout()
	noColor := settings.NoColor || !isTerminal(out)

	clientOpts := append(settings.ClientOptions(), blitz.WithClientLogger(logger))
	return &session{
		settings:  settings,
		logger:    logger,
		client:    blitz.NewClient(settings.User, settings.APIKey, clientOpts...),
		formatter: output.GetFormatter(outputFormat, settings.Verbose, noColor),
		out:       out,
	}, nil
}

// newRush creates a rush runner using the session's client and settings.
func (s *session) newRush(opts ...blitz.RunnerOption) *blitz.Runner[*blitz.Result] {
	base := []blitz.RunnerOption{
		blitz.WithPollInterval(s.settings.PollInterval),
		blitz.WithLogger(s.logger),
	}
	return blitz.NewRush(s.client, append(base, opts...)...)
}

// watch prints every result and, once the job completes, a summary.
func (s *session) watch(ctx context.Context, run func(context.Context, func(*blitz.Result)) error) error {
	var last *blitz.Result
	err := run(ctx, func(result *blitz.Result) {
		last = result
		fmt.Fprint(s.out, s.formatter.FormatResult(result))
	})
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Fprint(s.out, s.formatter.FormatSummary(output.Summarize(last)))
	}
	return nil
}

// report writes err through the session formatter, or as plain text when
// the session could not be built.
func report(cmd *cobra.Command, s *session, err error) error {
	formatter := output.FormatProvider(output.NewFormatter(false, true))
	out := cmd.ErrOrStderr()
	if s != nil {
		formatter, out = s.formatter, s.out
	}
	fmt.Fprint(out, formatter.FormatError(err))
	return &reportedError{err: err}
}

func (s *session) close() {
	s.client.Close()
	_ = s.logger.Sync()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && output.IsTerminal(f)
}
