package emailalert

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Card is one job card parsed out of an alert email.
type Card struct {
	Title    string
	Company  string
	Location string
	URL      string
}

var (
	reJobID  = regexp.MustCompile(`/(?:comm/)?jobs/view/(?:.*[-/])?(\d{8,})`)
	reCitySt = regexp.MustCompile(`\b([A-Z][A-Za-z .'-]+,\s[A-Z]{2})\b`)
	reHref   = regexp.MustCompile(`href="([^"]+)"`)
	reRawURL = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)
)

// ParseAlertCards extracts job cards from an alert email's HTML. Alert
// templates repeat several anchors per job (logo, title, footer), so
// anchors are merged per job id and the best fields win.
func ParseAlertCards(htmlBody string) ([]Card, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*Card{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		lh := strings.ToLower(href)
		if href == "" || !strings.Contains(lh, "linkedin.com") || !strings.Contains(lh, "/jobs/view/") {
			return
		}

		key := href
		if m := reJobID.FindStringSubmatch(href); len(m) == 2 {
			key = m[1]
		}

		c, ok := byID[key]
		if !ok {
			c = &Card{URL: href}
			byID[key] = c
			order = append(order, key)
		}

		if t := cleanText(a.Text()); plausibleTitle(t) && len(t) > len(c.Title) {
			c.Title = t
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		// The company logo's alt text is the most reliable company field.
		if c.Company == "" {
			card.Find("img[alt]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
				alt := cleanText(img.AttrOr("alt", ""))
				if alt == "" || strings.EqualFold(alt, "linkedin") {
					return true
				}
				c.Company = alt
				return false
			})
		}

		// "Company · Location" line. The p/span elements carry it clean;
		// a td also includes the title anchor's text, so it is only a
		// fallback and the title is trimmed off first.
		for _, sel := range []string{"p,span", "td"} {
			found := false
			card.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				t := cleanText(s.Text())
				if c.Title != "" {
					if i := strings.Index(t, c.Title); i >= 0 {
						t = cleanText(t[i+len(c.Title):])
					}
				}
				if t == "" || !strings.Contains(t, " · ") {
					return true
				}
				parts := strings.SplitN(t, " · ", 2)
				if c.Company == "" && strings.TrimSpace(parts[0]) != "" {
					c.Company = strings.TrimSpace(parts[0])
				}
				if c.Location == "" {
					c.Location = strings.TrimSpace(parts[1])
				}
				found = true
				return false
			})
			if found {
				break
			}
		}

		if c.Location == "" {
			if m := reCitySt.FindString(cleanText(card.Text())); m != "" {
				c.Location = m
			}
		}
	})

	out := make([]Card, 0, len(order))
	for _, key := range order {
		c := byID[key]
		if c.URL == "" || c.Title == "" {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// ExtractURLs pulls every absolute URL out of the html (hrefs) and the
// plain-text body, deduplicated in order of first appearance.
func ExtractURLs(htmlBody, textBody string) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		out = append(out, raw)
	}

	for _, m := range reHref.FindAllStringSubmatch(htmlBody, -1) {
		add(m[1])
	}
	for _, m := range reRawURL.FindAllString(textBody, -1) {
		add(m)
	}
	return out
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// plausibleTitle drops the footer/CTA anchor texts that also link to the
// job page.
func plausibleTitle(s string) bool {
	if len(s) < 4 || len(s) > 140 {
		return false
	}
	l := strings.ToLower(s)
	for _, bad := range []string{"view job", "see all jobs", "apply", "unsubscribe", "manage alerts", "sign in", "http"} {
		if strings.Contains(l, bad) {
			return false
		}
	}
	return true
}
