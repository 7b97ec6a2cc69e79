package run

import (
	"context"
	"fmt"
	"log"
	"strings"

	"rolescout/internal/config"
	"rolescout/internal/discover"
	"rolescout/internal/discover/aggregator"
	"rolescout/internal/discover/atsfeed"
	"rolescout/internal/discover/emailalert"
	"rolescout/internal/discover/websearch"
	"rolescout/internal/domain"
	"rolescout/internal/enrich"
	"rolescout/internal/ledger"
	"rolescout/internal/pace"
	"rolescout/internal/score"
	"rolescout/internal/secrets"
)

// Orchestrator sequences the pipeline stages over one ledger. Stages
// run strictly one after another; each is also invokable on its own.
type Orchestrator struct {
	Cfg     config.Config
	Ledger  *ledger.Ledger
	Limiter *pace.HostLimiter
}

func New(cfg config.Config, l *ledger.Ledger) *Orchestrator {
	return &Orchestrator{
		Cfg:     cfg,
		Ledger:  l,
		Limiter: pace.NewHostLimiter(cfg.Pacing.ReqPerSec, cfg.Pacing.Burst),
	}
}

// Run executes discover, enrich and score in order.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Discover(ctx, ""); err != nil {
		return err
	}
	if err := o.Enrich(ctx); err != nil {
		return err
	}
	return o.Score(ctx)
}

// Discover runs the enabled adapters and inserts their candidates.
// sourceFilter restricts to one adapter by name; empty runs all.
func (o *Orchestrator) Discover(ctx context.Context, sourceFilter string) error {
	adapters, err := o.buildAdapters(sourceFilter)
	if err != nil {
		return err
	}
	if len(adapters) == 0 {
		return fmt.Errorf("no discovery source matches %q", sourceFilter)
	}

	for _, d := range adapters {
		cands, sum, err := d.Discover(ctx)
		if err != nil {
			// One adapter failing never blocks the others.
			o.logLine(ctx, "discover", fmt.Sprintf("%s failed: %v", d.Name(), err))
			continue
		}

		inserted, known := 0, 0
		for _, c := range cands {
			ok, err := o.Ledger.Insert(ctx, c)
			if err != nil {
				return fmt.Errorf("discover insert: %w", err)
			}
			if ok {
				inserted++
			} else {
				known++
			}
		}

		line := fmt.Sprintf("%s: seen=%d emitted=%d inserted=%d known=%d",
			d.Name(), sum.Seen, sum.Emitted, inserted, known)
		if len(sum.Notes) > 0 {
			line += " (" + strings.Join(sum.Notes, "; ") + ")"
		}
		o.logLine(ctx, "discover", line)
	}
	return nil
}

// Enrich fetches and classifies New records.
func (o *Orchestrator) Enrich(ctx context.Context) error {
	f := &enrich.Fetcher{
		Store:            o.Ledger,
		Limiter:          o.Limiter,
		ProtectJDLen:     o.Cfg.Enrich.ProtectJDLen,
		MinJDLen:         o.Cfg.Enrich.MinJDLen,
		StructuredMinLen: o.Cfg.Enrich.StructuredMinLen,
		MaxAttempts:      o.Cfg.Enrich.MaxAttempts,
	}
	stats, err := f.Run(ctx)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}
	o.logLine(ctx, "enrich", stats.String())
	return nil
}

// Score writes fit output for every scorable record. Re-running
// overwrites previous scores; fetch state is untouched.
func (o *Orchestrator) Score(ctx context.Context) error {
	records, err := o.Ledger.ListScorable(ctx)
	if err != nil {
		return fmt.Errorf("score list: %w", err)
	}

	scored, fromFetchError := 0, 0
	for _, rec := range records {
		res := score.Role(score.Input{
			Title:        rec.JobTitle,
			Company:      rec.Company,
			JD:           rec.JDText,
			LocationRaw:  rec.LocationRaw,
			WorkModeHint: rec.WorkModeHint,
		}, o.Cfg.Scoring.CompFloorK)

		err := o.Ledger.SaveScore(ctx, rec.CanonicalURL, ledger.ScoreUpdate{
			FitScore:        res.FitScore,
			FitNotes:        res.FitNotes,
			DealbreakerFlag: res.DealbreakerFlag,
			LocationUSOK:    res.LocationUSOK,
			CompOK:          res.CompOK,
			WorkModeFinal:   res.WorkModeFinal,
			RankKey:         res.RankKey,
		})
		if err != nil {
			return fmt.Errorf("score save: %w", err)
		}
		scored++
		if rec.Status == domain.StatusFetchError {
			fromFetchError++
		}
	}

	line := fmt.Sprintf("scored %d roles", scored)
	if fromFetchError > 0 {
		line += fmt.Sprintf(", %d were FetchError+TEXT_TOO_SHORT", fromFetchError)
	}
	o.logLine(ctx, "score", line)
	return nil
}

func (o *Orchestrator) buildAdapters(sourceFilter string) ([]discover.Discoverer, error) {
	var out []discover.Discoverer

	want := func(name string, enabled bool) bool {
		if sourceFilter != "" {
			return sourceFilter == name
		}
		return enabled
	}

	if want("email_alert", o.Cfg.Email.Enabled) {
		password, err := secrets.IMAPPassword(o.Cfg)
		if err != nil {
			return nil, fmt.Errorf("email_alert: %w", err)
		}
		out = append(out, &emailalert.Adapter{
			Inbox: &emailalert.IMAPInbox{
				Addr:     fmt.Sprintf("%s:%d", o.Cfg.Email.IMAPHost, o.Cfg.Email.IMAPPort),
				Host:     o.Cfg.Email.IMAPHost,
				Username: o.Cfg.Email.Username,
				Password: password,
				Mailbox:  o.Cfg.Email.Mailbox,
			},
			Senders:        o.Cfg.Email.AlertSenders,
			WindowDays:     o.Cfg.Email.WindowDays,
			MaxMessages:    o.Cfg.Email.MaxThreads,
			PlatformFilter: o.Cfg.Email.PlatformFilter,
		})
	}

	if want("search_provider", o.Cfg.Search.Enabled) {
		token, err := secrets.SearchToken()
		if err != nil {
			return nil, fmt.Errorf("search_provider: %w", err)
		}
		out = append(out, &websearch.Adapter{
			Client:    &websearch.Client{Token: token, Limiter: o.Limiter},
			Queries:   o.Cfg.Search.Queries,
			Count:     o.Cfg.Search.Count,
			Pages:     o.Cfg.Search.Pages,
			Freshness: o.Cfg.Search.Freshness,
		})
	}

	if want("ats_feed", o.Cfg.ATSFeed.Enabled) {
		out = append(out, &atsfeed.Adapter{
			Boards:       o.Ledger,
			Keywords:     o.Cfg.ATSFeed.Keywords,
			MaxCompanies: o.Cfg.ATSFeed.MaxCompanies,
			Offset:       o.Cfg.ATSFeed.Offset,
			Limiter:      o.Limiter,
		})
	}

	if want("aggregator_api", o.Cfg.Aggregator.Enabled) {
		key, err := secrets.AggregatorKey()
		if err != nil {
			return nil, fmt.Errorf("aggregator_api: %w", err)
		}
		out = append(out, &aggregator.Adapter{
			Client:   &aggregator.Client{APIKey: key, Limiter: o.Limiter},
			Queries:  o.Cfg.Aggregator.Queries,
			MaxPages: o.Cfg.Aggregator.MaxPages,
		})
	}

	return out, nil
}

// logLine writes to both the operator log and the durable log sink.
func (o *Orchestrator) logLine(ctx context.Context, stage, message string) {
	log.Printf("[%s] %s", stage, message)
	if err := o.Ledger.AppendLog(ctx, stage, message); err != nil {
		log.Printf("[%s] log sink: %v", stage, err)
	}
}
