package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/blitz/pkg/blitz"
)

func newAbortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort JOB_ID",
		Short: "Abort a queued or running rush",
		Args:  cobra.ExactArgs(1),
		RunE:  runAbort,
	}
}

func runAbort(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return report(cmd, nil, err)
	}
	defer s.close()

	if err := abortJob(cmd.Context(), s.client, args[0]); err != nil {
		return report(cmd, s, err)
	}
	fmt.Fprint(s.out, s.formatter.FormatAborted(args[0]))
	return nil
}

// abortJob logs in, aborts jobID and, unlike Runner.Abort, reports every
// failure.
func abortJob(ctx context.Context, client *blitz.Client, jobID string) error {
	if err := client.Authenticate(ctx); err != nil {
		return err
	}
	resp, err := client.AbortJob(ctx, jobID)
	if err != nil {
		return err
	}
	return blitz.ServerErrorFrom(resp)
}
