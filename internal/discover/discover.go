package discover

import (
	"context"
	"strings"

	"rolescout/internal/domain"
)

// Summary is an adapter's one-line accounting for the run log.
type Summary struct {
	// Raw results seen before canonicalization and dedup.
	Seen int
	// Candidates emitted after adapter-local filtering.
	Emitted int
	// Free-form notes ("more results available", posted-age sample, ...).
	Notes []string
}

// Discoverer is one discovery source. Discover returns candidates with
// canonical URLs already applied; persistence and cross-source dedup
// happen in the orchestrator.
type Discoverer interface {
	Name() string
	Discover(ctx context.Context) ([]domain.Candidate, Summary, error)
}

// PlatformFor classifies a job URL by hosting platform.
func PlatformFor(rawURL string) domain.ATS {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "jobs.lever.co/"):
		return domain.ATSLever
	case strings.Contains(u, "jobs.ashbyhq.com/"):
		return domain.ATSAshby
	case strings.Contains(u, "boards.greenhouse.io/"), strings.Contains(u, "job-boards.greenhouse.io/"):
		return domain.ATSGreenhouse
	case strings.Contains(u, "linkedin.com/"):
		return domain.ATSLinkedIn
	default:
		return domain.ATSOther
	}
}

// SplitTitleCompany splits a search-result title of the form
// "Company - Job Title". Results without the separator keep the whole
// string as the title with an empty company.
func SplitTitleCompany(s string) (company, title string) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " - "); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+3:])
	}
	return "", s
}

// BoardSlug extracts the company slug from an ATS job URL
// (jobs.lever.co/<slug>/..., jobs.ashbyhq.com/<slug>/...,
// boards.greenhouse.io/<slug>/...). Empty when the URL has no slug
// segment or is not on a known board host.
func BoardSlug(rawURL string) (domain.ATS, string) {
	ats := PlatformFor(rawURL)
	var marker string
	switch ats {
	case domain.ATSLever:
		marker = "jobs.lever.co/"
	case domain.ATSAshby:
		marker = "jobs.ashbyhq.com/"
	case domain.ATSGreenhouse:
		marker = "greenhouse.io/"
	default:
		return ats, ""
	}

	u := rawURL
	i := strings.Index(strings.ToLower(u), marker)
	if i < 0 {
		return ats, ""
	}
	rest := u[i+len(marker):]
	rest = strings.TrimPrefix(rest, "/")
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		rest = rest[:j]
	}
	slug := strings.ToLower(strings.TrimSpace(rest))
	if slug == "" || slug == "jobs" || slug == "embed" {
		return ats, ""
	}
	return ats, slug
}
