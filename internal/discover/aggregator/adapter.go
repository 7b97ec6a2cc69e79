package aggregator

import (
	"context"
	"fmt"

	"rolescout/internal/discover"
	"rolescout/internal/domain"
	"rolescout/internal/urlcanon"
)

// Adapter runs the configured queries against the jobs metasearch
// engine, following the page cursor up to MaxPages per query.
type Adapter struct {
	Client   *Client
	Queries  []string
	MaxPages int
}

func (a *Adapter) Name() string { return "aggregator_api" }

func (a *Adapter) Discover(ctx context.Context) ([]domain.Candidate, discover.Summary, error) {
	var sum discover.Summary

	maxPages := a.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}

	seen := map[string]struct{}{}
	var out []domain.Candidate
	postedSample := ""

	for _, query := range a.Queries {
		pageToken := ""
		for page := 0; page < maxPages; page++ {
			res, err := a.Client.Search(ctx, query, pageToken)
			if err != nil {
				sum.Notes = append(sum.Notes, fmt.Sprintf("query failed: %v", err))
				break
			}
			sum.Seen += len(res.Results)

			for _, r := range res.Results {
				raw := pickBestApplyURL(r.CompanyName, r.ApplyOptions)
				if raw == "" {
					continue
				}
				// Aggregator links carry their own tracking wrappers on
				// top of the usual utm noise.
				canon := urlcanon.Canonical(urlcanon.StripTracking(raw))
				if canon == "" {
					continue
				}
				if collapsed := urlcanon.CanonicalLinkedInJob(canon); collapsed != "" {
					canon = collapsed
				}
				if _, dup := seen[canon]; dup {
					continue
				}
				seen[canon] = struct{}{}

				if postedSample == "" && r.DetectedExtensions.PostedAt != "" {
					postedSample = r.DetectedExtensions.PostedAt
				}

				out = append(out, domain.Candidate{
					CanonicalURL: canon,
					Company:      r.CompanyName,
					Title:        r.Title,
					Location:     r.Location,
					Source:       domain.SourceAggregatorAPI,
					ATS:          discover.PlatformFor(canon),
					Query:        query,
				})
			}

			pageToken = res.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	if postedSample != "" {
		sum.Notes = append(sum.Notes, fmt.Sprintf("posted-age sample: %s", postedSample))
	}
	sum.Emitted = len(out)
	return out, sum, nil
}
