package websearch

import (
	"context"
	"fmt"
	"sort"

	"rolescout/internal/discover"
	"rolescout/internal/domain"
	"rolescout/internal/urlcanon"
)

// Adapter runs the per-platform query variants against the search
// provider and keeps only URLs that look like individual postings.
type Adapter struct {
	Client *Client
	// Queries maps platform name (lever, ashby, greenhouse) to query
	// variants; all variants run every invocation.
	Queries   map[string][]string
	Count     int // per page, provider caps at 20
	Pages     int // provider caps the page index at 0..9
	Freshness string
}

func (a *Adapter) Name() string { return "search_provider" }

func (a *Adapter) Discover(ctx context.Context) ([]domain.Candidate, discover.Summary, error) {
	var sum discover.Summary

	count := a.Count
	if count <= 0 || count > 20 {
		count = 20
	}
	pages := a.Pages
	if pages <= 0 || pages > 10 {
		pages = 10
	}

	platforms := make([]string, 0, len(a.Queries))
	for p := range a.Queries {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	seen := map[string]struct{}{}
	var out []domain.Candidate
	moreLeft := 0

	for _, platformName := range platforms {
		platform := domain.ATS(platformName)
		for _, query := range a.Queries[platformName] {
			for page := 0; page < pages; page++ {
				res, err := a.Client.Search(ctx, query, count, page, a.Freshness)
				if err != nil {
					// A failed query is a local failure: log and move on,
					// the other platforms still produce results.
					sum.Notes = append(sum.Notes, fmt.Sprintf("%s query failed: %v", platformName, err))
					break
				}
				if len(res.Results) == 0 {
					break
				}
				sum.Seen += len(res.Results)

				for _, r := range res.Results {
					canon := urlcanon.Canonical(r.URL)
					if canon == "" {
						continue
					}
					slug, ok := acceptJobURL(platform, canon)
					if !ok {
						continue
					}
					if _, dup := seen[canon]; dup {
						continue
					}
					seen[canon] = struct{}{}

					company, title := discover.SplitTitleCompany(r.Title)
					if company == "" {
						company = slug
					}
					out = append(out, domain.Candidate{
						CanonicalURL: canon,
						Company:      company,
						Title:        title,
						Source:       domain.SourceSearchProvider,
						ATS:          platform,
						Query:        query,
					})
				}

				if page == pages-1 && res.MoreResultsAvailable {
					moreLeft++
				}
			}
		}
	}

	if moreLeft > 0 {
		sum.Notes = append(sum.Notes, fmt.Sprintf("more results available on %d queries", moreLeft))
	}
	sum.Emitted = len(out)
	return out, sum, nil
}
