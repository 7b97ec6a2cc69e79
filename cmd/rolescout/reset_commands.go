package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rolescout/internal/enrich"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Repair ledger records left in a bad state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "bad-enriched",
		Short: "Return records with junk or error-page content to New",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(true, func(ctx context.Context, s *session) error {
			n, err := enrich.ResetBadEnriched(ctx, s.ledger)
			if err != nil {
				return err
			}
			fmt.Printf("reset %d bad-enriched records\n", n)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "short-text",
		Short: "Return TEXT_TOO_SHORT failures to New for another fetch",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(true, func(ctx context.Context, s *session) error {
			n, err := enrich.ResetShortText(ctx, s.ledger)
			if err != nil {
				return err
			}
			fmt.Printf("reset %d short-text records\n", n)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dead-links",
		Short: "Mark 404 and not-found-page failures as Dead",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(true, func(ctx context.Context, s *session) error {
			n, err := enrich.NormalizeDeadLinks(ctx, s.ledger)
			if err != nil {
				return err
			}
			fmt.Printf("marked %d records Dead\n", n)
			return nil
		}),
	})

	return cmd
}
