package websearch

import (
	"regexp"
	"strings"

	"rolescout/internal/discover"
	"rolescout/internal/domain"
)

// Acceptance predicates per platform. Search engines return board
// landing pages, category pages and demo boards alongside real
// postings; only URLs shaped like an individual posting pass.

var (
	reLeverJob      = regexp.MustCompile(`(?i)^https://jobs\.lever\.co/([^/]+)/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	reAshbyJob      = regexp.MustCompile(`(?i)^https://jobs\.ashbyhq\.com/([^/]+)/[^/?#]+`)
	reGreenhouseJob = regexp.MustCompile(`(?i)^https://(?:boards|job-boards)\.greenhouse\.io/([^/]+)/jobs?/\d+`)
)

var bannedSlugs = map[domain.ATS]map[string]struct{}{
	domain.ATSLever:      {"lever": {}, "democorp": {}},
	domain.ATSAshby:      {"ashby": {}, "demo": {}, "democorp": {}},
	domain.ATSGreenhouse: {"democorp": {}, "example": {}},
}

// acceptJobURL reports whether a canonical URL looks like an individual
// posting on the given platform, and returns the company slug.
func acceptJobURL(platform domain.ATS, canonicalURL string) (string, bool) {
	var m []string
	switch platform {
	case domain.ATSLever:
		m = reLeverJob.FindStringSubmatch(canonicalURL)
	case domain.ATSAshby:
		m = reAshbyJob.FindStringSubmatch(canonicalURL)
	case domain.ATSGreenhouse:
		m = reGreenhouseJob.FindStringSubmatch(canonicalURL)
	default:
		return "", false
	}
	if len(m) != 2 {
		return "", false
	}
	slug := strings.ToLower(m[1])
	if _, banned := bannedSlugs[platform][slug]; banned {
		return "", false
	}
	if discover.PlatformFor(canonicalURL) != platform {
		return "", false
	}
	return slug, true
}
