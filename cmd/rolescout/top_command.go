package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTopCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the highest-ranked roles",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(false, func(ctx context.Context, s *session) error {
			records, err := s.ledger.ListRanked(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no scored roles yet; run `rolescout run` first")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tCOMPANY\tTITLE\tMODE\tURL")
			for _, r := range records {
				mode := r.WorkModeFinal
				if r.DealbreakerFlag {
					mode += " !"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					r.FitScore, r.Company, r.JobTitle, mode, r.CanonicalURL)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Number of roles to show")
	return cmd
}

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent pipeline log lines",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(false, func(ctx context.Context, s *session) error {
			lines, err := s.ledger.RecentLogs(ctx, limit)
			if err != nil {
				return err
			}
			for _, ln := range lines {
				fmt.Printf("%s [%s] %s\n", ln.TS.Format("2006-01-02 15:04:05"), ln.Stage, ln.Message)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of log lines to show")
	return cmd
}
