package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rolescout/internal/domain"
	"rolescout/internal/pace"
)

// Store is the ledger surface the fetcher needs.
type Store interface {
	ListFetchable(ctx context.Context, protectLen int) ([]domain.RoleRecord, error)
	MarkEnriched(ctx context.Context, canonicalURL, jdText, locationRaw, workModeHint string, httpStatus int) error
	MarkFetchFailed(ctx context.Context, canonicalURL, reason string, httpStatus int, dead bool) error
}

// Stats is one enrichment pass's accounting.
type Stats struct {
	Scanned  int
	Enriched int
	Failed   int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d enriched=%d failed=%d", s.Scanned, s.Enriched, s.Failed)
}

// Fetcher turns New records into Enriched ones by fetching and
// classifying their job pages. Every attempt resolves to exactly one
// outcome; a record is never left half-written.
type Fetcher struct {
	Store      Store
	HTTPClient *http.Client
	Limiter    *pace.HostLimiter

	// jd_text longer than this is protected from re-fetch.
	ProtectJDLen int
	// Page text below this length classifies as TEXT_TOO_SHORT.
	MinJDLen int
	// Minimum accepted length from a structured posting API.
	StructuredMinLen int
	// Attempt budget per invocation.
	MaxAttempts int

	// Override for tests.
	AshbyAPIBase string
}

var notFoundPhrases = []string{
	"404 error",
	"not found",
	"couldn't find anything here",
	"the job posting you're looking for might have closed",
}

func (f *Fetcher) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	protect := f.ProtectJDLen
	if protect <= 0 {
		protect = 500
	}
	minLen := f.MinJDLen
	if minLen <= 0 {
		minLen = 800
	}
	structuredMin := f.StructuredMinLen
	if structuredMin <= 0 {
		structuredMin = 100
	}
	budget := f.MaxAttempts
	if budget <= 0 {
		budget = 120
	}

	records, err := f.Store.ListFetchable(ctx, protect)
	if err != nil {
		return stats, fmt.Errorf("enrich list: %w", err)
	}

	hc := f.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	ashby := newAshbyClient(f.AshbyAPIBase, hc, f.Limiter)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Scanned++

		outcome := f.fetchOne(ctx, hc, ashby, rec, minLen, structuredMin)
		if outcome.reason == "" {
			err = f.Store.MarkEnriched(ctx, rec.CanonicalURL,
				outcome.text, outcome.locationRaw, outcome.workMode, outcome.httpStatus)
			if err != nil {
				return stats, err
			}
			stats.Enriched++
		} else {
			dead := outcome.reason == "HTTP_404" || strings.HasSuffix(outcome.reason, "_404_PAGE")
			err = f.Store.MarkFetchFailed(ctx, rec.CanonicalURL,
				outcome.reason, outcome.httpStatus, dead)
			if err != nil {
				return stats, err
			}
			stats.Failed++
		}

		if stats.Enriched+stats.Failed >= budget {
			break
		}
	}

	return stats, nil
}

type fetchOutcome struct {
	text        string
	locationRaw string
	workMode    string
	httpStatus  int
	reason      string
}

func (f *Fetcher) fetchOne(ctx context.Context, hc *http.Client, ashby *ashbyClient, rec domain.RoleRecord, minLen, structuredMin int) fetchOutcome {
	// Ashby pages are JS shells; only the posting API has the text.
	if rec.ATS == domain.ATSAshby {
		st, err := ashby.FetchStructured(ctx, rec.CanonicalURL)
		if err != nil {
			return fetchOutcome{reason: "EXCEPTION"}
		}
		if st == nil || len(st.Text) < structuredMin {
			return fetchOutcome{httpStatus: 200, reason: "TEXT_TOO_SHORT"}
		}
		loc := st.LocationRaw
		if loc == "" {
			loc = ExtractLocationHint(head(st.Text, 600))
		}
		mode := st.WorkMode
		if mode == "" {
			mode = ExtractWorkModeHint(st.Text)
		}
		return fetchOutcome{text: st.Text, locationRaw: loc, workMode: mode, httpStatus: 200}
	}

	if f.Limiter != nil {
		if err := f.Limiter.WaitURL(ctx, rec.CanonicalURL); err != nil {
			return fetchOutcome{reason: "EXCEPTION"}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.CanonicalURL, nil)
	if err != nil {
		return fetchOutcome{reason: "EXCEPTION"}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	res, err := hc.Do(req)
	if err != nil {
		return fetchOutcome{reason: "EXCEPTION"}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fetchOutcome{httpStatus: res.StatusCode, reason: "EXCEPTION"}
	}

	text := TruncateNoise(HTMLToText(string(body)))
	lower := strings.ToLower(text)

	out := fetchOutcome{httpStatus: res.StatusCode}
	switch {
	case res.StatusCode != http.StatusOK:
		out.reason = fmt.Sprintf("HTTP_%d", res.StatusCode)
	case looksNotFound(lower):
		out.reason = notFoundReason(rec.ATS)
	case len(text) < minLen:
		out.reason = "TEXT_TOO_SHORT"
	case strings.Contains(lower, "democorp"):
		out.reason = "DEMO_BOARD"
	default:
		out.text = text
		out.locationRaw = ExtractLocationHint(head(text, 600))
		out.workMode = ExtractWorkModeHint(text)
	}
	return out
}

func looksNotFound(lowerText string) bool {
	for _, p := range notFoundPhrases {
		if strings.Contains(lowerText, p) {
			return true
		}
	}
	return false
}

// notFoundReason names a soft-404 by hosting platform.
func notFoundReason(ats domain.ATS) string {
	switch ats {
	case domain.ATSLever:
		return "LEVER_404_PAGE"
	case domain.ATSAshby:
		return "ASHBY_404_PAGE"
	case domain.ATSGreenhouse:
		return "GREENHOUSE_404_PAGE"
	case domain.ATSLinkedIn:
		return "LINKEDIN_404_PAGE"
	default:
		return "OTHER_404_PAGE"
	}
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
