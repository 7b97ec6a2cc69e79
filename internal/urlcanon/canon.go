package urlcanon

import (
	"net/url"
	"regexp"
	"strings"
)

// Tracking params dropped during canonicalization. utm_* is handled as a
// prefix match; the rest are exact keys.
var trackingExact = map[string]bool{
	"gclid":   true,
	"fbclid":  true,
	"msclkid": true,
	"mc_cid":  true,
	"mc_eid":  true,
	"mkt_tok": true,
}

// Canonical normalizes raw into the stable identity key used for dedup.
// Returns "" when raw is not parseable as an absolute http(s) URL.
//
// Identical inputs always canonicalize identically; surviving query params
// keep their original order so the result is stable under tracking-param
// reordering (the dropped ones) without reordering the rest.
func Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Emails and quoted text often leave trailing punctuation on URLs.
	raw = strings.TrimRight(raw, ")].,;")

	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return ""
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")
	base := scheme + "://" + strings.ToLower(u.Host) + path

	kept := filterQuery(u.RawQuery, isTrackingKey)
	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}

func isTrackingKey(key, _ string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "utm_") || trackingExact[k]
}

// filterQuery splits a raw query string and drops pairs matched by the
// predicate, preserving the order of the remainder. The predicate receives
// the key and the full pair.
func filterQuery(rawQuery string, drop func(key, pair string) bool) []string {
	if rawQuery == "" {
		return nil
	}
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if drop(key, pair) {
			continue
		}
		kept = append(kept, pair)
	}
	return kept
}

// StripTracking removes utm_* params plus the aggregator's
// source=...google_jobs... redirect marker, leaving everything else as-is.
// Used on apply URLs before canonicalization.
func StripTracking(raw string) string {
	i := strings.IndexByte(raw, '?')
	if i < 0 {
		return raw
	}
	base, query := raw[:i], raw[i+1:]
	kept := filterQuery(query, func(key, pair string) bool {
		k := strings.ToLower(key)
		if strings.HasPrefix(k, "utm_") {
			return true
		}
		return k == "source" && strings.Contains(strings.ToLower(pair), "google_jobs")
	})
	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}

var linkedInJobRe = regexp.MustCompile(`linkedin\.com/(?:comm/)?jobs/view/(?:.*[-/])?(\d{8,})`)

// CanonicalLinkedInJob collapses any LinkedIn job URL variant
// (/comm/jobs/view/, slug-suffixed ids, tracked email links) to
// https://www.linkedin.com/jobs/view/<id>. Returns "" for non-job URLs.
func CanonicalLinkedInJob(raw string) string {
	m := linkedInJobRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return "https://www.linkedin.com/jobs/view/" + m[1]
}
