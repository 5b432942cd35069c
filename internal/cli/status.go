package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status JOB_ID",
		Short: "Follow a queued or running rush until it completes",
		Long: `Attach to a rush queued earlier, for example by another terminal, and
print its timeline until it completes. Interrupting the command stops
following the rush without aborting it.`,
		Args: cobra.ExactArgs(1),
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return report(cmd, nil, err)
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := s.newRush()
	runner.Attach(args[0])

	if err := s.watch(ctx, runner.JobStatus); err != nil {
		return report(cmd, s, err)
	}
	return nil
}
