package main

import (
	"context"

	"github.com/spf13/cobra"

	"rolescout/internal/run"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run discover, enrich and score in sequence",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(true, func(ctx context.Context, s *session) error {
			return run.New(s.cfg, s.ledger).Run(ctx)
		}),
	}
}

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan enabled sources and insert new candidates",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(true, func(ctx context.Context, s *session) error {
			return run.New(s.cfg, s.ledger).Discover(ctx, source)
		}),
	}
	cmd.Flags().StringVar(&source, "source", "",
		"Run a single source (email_alert, search_provider, ats_feed, aggregator_api)")
	return cmd
}

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Fetch and classify job descriptions for New records",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(true, func(ctx context.Context, s *session) error {
			return run.New(s.cfg, s.ledger).Enrich(ctx)
		}),
	}
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Score and rank every enriched record",
		Args:  cobra.NoArgs,
		RunE: ctx.runWithSession(true, func(ctx context.Context, s *session) error {
			return run.New(s.cfg, s.ledger).Score(ctx)
		}),
	}
}
