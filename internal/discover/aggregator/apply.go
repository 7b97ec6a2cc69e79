package aggregator

import (
	"regexp"
	"strings"

	"rolescout/internal/discover"
	"rolescout/internal/domain"
)

// pickBestApplyURL selects the most canonical apply link from a result's
// options. Direct board links beat aggregator mirrors: lever, then
// ashby, then greenhouse, each only when the board slug plausibly
// matches the company name; then a linkedin link; then the first option.
func pickBestApplyURL(companyName string, options []ApplyOption) string {
	if len(options) == 0 {
		return ""
	}
	want := companyToSlug(companyName)

	for _, platform := range []domain.ATS{domain.ATSLever, domain.ATSAshby, domain.ATSGreenhouse} {
		for _, opt := range options {
			if discover.PlatformFor(opt.Link) != platform {
				continue
			}
			_, slug := discover.BoardSlug(opt.Link)
			if slug == "" {
				continue
			}
			if slugMatchesCompany(slug, want) {
				return opt.Link
			}
		}
	}

	for _, opt := range options {
		if discover.PlatformFor(opt.Link) == domain.ATSLinkedIn {
			return opt.Link
		}
	}

	return options[0].Link
}

var (
	reLeadingThe      = regexp.MustCompile(`^the\s+`)
	reCorporateSuffix = regexp.MustCompile(`\s*(inc\.?|llc\.?|ltd\.?|corp\.?|corporation|company|co\.?|group)\s*$`)
)

// companyToSlug lowercases, drops a leading "The" and trailing corporate
// suffixes, then strips everything but letters and digits, the shape
// board slugs usually take.
func companyToSlug(name string) string {
	s := strings.ToLower(name)
	s = reLeadingThe.ReplaceAllString(s, "")
	s = reCorporateSuffix.ReplaceAllString(s, "")

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// slugMatchesCompany is deliberately fuzzy: "acme-inc" hosts "Acme" and
// "Acme Inc." hosts "acme". Containment either direction counts.
func slugMatchesCompany(slug, companySlug string) bool {
	s := companyToSlug(slug)
	if s == "" || companySlug == "" {
		return false
	}
	return strings.Contains(s, companySlug) || strings.Contains(companySlug, s)
}
