package emailalert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rolescout/internal/discover"
	"rolescout/internal/domain"
	"rolescout/internal/urlcanon"
)

// Adapter turns job-alert emails into candidates. Alert cards are the
// primary path; when PlatformFilter is set, plain links matching that
// host are harvested as well (board alerts carry no card markup).
type Adapter struct {
	Inbox          Inbox
	Senders        []string
	WindowDays     int
	MaxMessages    int
	PlatformFilter string
}

func (a *Adapter) Name() string { return "email_alert" }

func (a *Adapter) Discover(ctx context.Context) ([]domain.Candidate, discover.Summary, error) {
	var sum discover.Summary

	windowDays := a.WindowDays
	if windowDays <= 0 {
		windowDays = 14
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	msgs, err := a.Inbox.Fetch(ctx, a.Senders, since, a.MaxMessages)
	if err != nil {
		return nil, sum, fmt.Errorf("email_alert fetch: %w", err)
	}
	sum.Notes = append(sum.Notes, fmt.Sprintf("%d messages in window", len(msgs)))

	seen := map[string]struct{}{}
	var out []domain.Candidate

	for _, m := range msgs {
		if m.HTML != "" {
			cards, err := ParseAlertCards(m.HTML)
			if err != nil {
				sum.Notes = append(sum.Notes, fmt.Sprintf("card parse failed: %v", err))
				continue
			}
			sum.Seen += len(cards)
			for _, c := range cards {
				canon := urlcanon.CanonicalLinkedInJob(c.URL)
				if canon == "" {
					canon = urlcanon.Canonical(c.URL)
				}
				if canon == "" {
					continue
				}
				if _, ok := seen[canon]; ok {
					continue
				}
				seen[canon] = struct{}{}
				out = append(out, domain.Candidate{
					CanonicalURL: canon,
					Company:      c.Company,
					Title:        c.Title,
					Location:     c.Location,
					Source:       domain.SourceEmailAlert,
					ATS:          discover.PlatformFor(canon),
					Query:        m.Subject,
				})
			}
		}

		if a.PlatformFilter != "" {
			for _, raw := range ExtractURLs(m.HTML, m.Text) {
				if !strings.Contains(strings.ToLower(raw), strings.ToLower(a.PlatformFilter)) {
					continue
				}
				sum.Seen++
				canon := urlcanon.Canonical(raw)
				if canon == "" {
					continue
				}
				if _, ok := seen[canon]; ok {
					continue
				}
				seen[canon] = struct{}{}
				ats, slug := discover.BoardSlug(canon)
				out = append(out, domain.Candidate{
					CanonicalURL: canon,
					Company:      slug,
					Source:       domain.SourceEmailAlert,
					ATS:          ats,
					Query:        m.Subject,
				})
			}
		}
	}

	sum.Emitted = len(out)
	return out, sum, nil
}
