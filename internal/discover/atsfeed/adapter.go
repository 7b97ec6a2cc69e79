package atsfeed

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"rolescout/internal/discover"
	"rolescout/internal/domain"
	"rolescout/internal/pace"
	"rolescout/internal/urlcanon"
)

// BoardSource supplies the stored URLs boards are derived from.
type BoardSource interface {
	KnownJobURLs(ctx context.Context) ([]string, error)
}

// Adapter polls the public feeds of company boards already present in
// the ledger. MaxCompanies bounds one invocation; Offset resumes the
// rotation on the next one.
type Adapter struct {
	Boards       BoardSource
	Keywords     string // title filter regex, case-insensitive
	MaxCompanies int
	Offset       int
	HTTPClient   *http.Client
	Limiter      *pace.HostLimiter
}

func (a *Adapter) Name() string { return "ats_feed" }

func (a *Adapter) Discover(ctx context.Context) ([]domain.Candidate, discover.Summary, error) {
	return a.discover(ctx, newFeedClient(a.HTTPClient, a.Limiter))
}

func (a *Adapter) discover(ctx context.Context, client *feedClient) ([]domain.Candidate, discover.Summary, error) {
	var sum discover.Summary

	var keywords *regexp.Regexp
	if a.Keywords != "" {
		re, err := regexp.Compile("(?i)" + a.Keywords)
		if err != nil {
			return nil, sum, fmt.Errorf("ats_feed keywords: %w", err)
		}
		keywords = re
	}

	urls, err := a.Boards.KnownJobURLs(ctx)
	if err != nil {
		return nil, sum, fmt.Errorf("ats_feed boards: %w", err)
	}
	boards := DeriveBoards(urls, a.Offset, a.MaxCompanies)
	sum.Notes = append(sum.Notes,
		fmt.Sprintf("%d boards this batch (offset %d)", len(boards), a.Offset))

	seen := map[string]struct{}{}
	var out []domain.Candidate

	for _, b := range boards {
		var postings []Posting
		var err error
		switch b.ATS {
		case domain.ATSLever:
			postings, err = client.lever(ctx, b.Slug)
		case domain.ATSAshby:
			postings, err = client.ashby(ctx, b.Slug)
		case domain.ATSGreenhouse:
			postings, err = client.greenhouse(ctx, b.Slug)
		default:
			continue
		}
		if err != nil {
			// One dead board never stops the batch.
			sum.Notes = append(sum.Notes, fmt.Sprintf("%s/%s: %v", b.ATS, b.Slug, err))
			continue
		}
		sum.Seen += len(postings)

		for _, p := range postings {
			if keywords != nil && !keywords.MatchString(p.Title) {
				continue
			}
			canon := urlcanon.Canonical(p.URL)
			if canon == "" {
				continue
			}
			if _, dup := seen[canon]; dup {
				continue
			}
			seen[canon] = struct{}{}
			out = append(out, domain.Candidate{
				CanonicalURL: canon,
				Company:      b.Slug,
				Title:        p.Title,
				Location:     p.Location,
				Source:       domain.SourceATSFeed,
				ATS:          b.ATS,
				Query:        fmt.Sprintf("%s/%s", b.ATS, b.Slug),
			})
		}
	}

	sum.Emitted = len(out)
	return out, sum, nil
}
