package atsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rolescout/internal/pace"
)

// Posting is one job from a board feed, normalized across platforms.
type Posting struct {
	Title    string
	Location string
	URL      string
}

// feedClient fetches public board feeds. Base URLs are overridable for
// tests; empty means the real endpoint.
type feedClient struct {
	hc      *http.Client
	limiter *pace.HostLimiter

	leverBase      string // https://api.lever.co/v0/postings
	ashbyBase      string // https://api.ashbyhq.com/posting-api/job-board
	greenhouseBase string // https://boards-api.greenhouse.io/v1/boards
}

func newFeedClient(hc *http.Client, limiter *pace.HostLimiter) *feedClient {
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	return &feedClient{hc: hc, limiter: limiter}
}

func (c *feedClient) getJSON(ctx context.Context, url string, out any) (int, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, url); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 400 {
		return res.StatusCode, fmt.Errorf("feed status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return res.StatusCode, fmt.Errorf("feed decode: %w", err)
	}
	return res.StatusCode, nil
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
}

// Lever pages with skip/limit; the API caps limit at 100.
func (c *feedClient) lever(ctx context.Context, slug string) ([]Posting, error) {
	base := c.leverBase
	if base == "" {
		base = "https://api.lever.co/v0/postings"
	}

	var out []Posting
	for skip := 0; ; skip += 100 {
		url := fmt.Sprintf("%s/%s?mode=json&skip=%d&limit=100", base, slug, skip)

		var page []leverPosting
		if _, err := c.getJSON(ctx, url, &page); err != nil {
			return nil, fmt.Errorf("lever %s: %w", slug, err)
		}
		for _, p := range page {
			if p.HostedURL == "" || strings.TrimSpace(p.Text) == "" {
				continue
			}
			out = append(out, Posting{
				Title:    strings.TrimSpace(p.Text),
				Location: strings.TrimSpace(p.Categories.Location),
				URL:      p.HostedURL,
			})
		}
		if len(page) < 100 {
			break
		}
	}
	return out, nil
}

type ashbyBoard struct {
	Jobs []struct {
		Title    string `json:"title"`
		Location string `json:"location"`
		JobURL   string `json:"jobUrl"`
	} `json:"jobs"`
}

func (c *feedClient) ashby(ctx context.Context, slug string) ([]Posting, error) {
	base := c.ashbyBase
	if base == "" {
		base = "https://api.ashbyhq.com/posting-api/job-board"
	}

	var board ashbyBoard
	if _, err := c.getJSON(ctx, fmt.Sprintf("%s/%s", base, slug), &board); err != nil {
		return nil, fmt.Errorf("ashby %s: %w", slug, err)
	}

	out := make([]Posting, 0, len(board.Jobs))
	for _, j := range board.Jobs {
		url := j.JobURL
		if url == "" {
			continue
		}
		out = append(out, Posting{
			Title:    strings.TrimSpace(j.Title),
			Location: strings.TrimSpace(j.Location),
			URL:      url,
		})
	}
	return out, nil
}

type greenhouseBoard struct {
	Jobs []struct {
		Title       string `json:"title"`
		AbsoluteURL string `json:"absolute_url"`
		Location    struct {
			Name string `json:"name"`
		} `json:"location"`
	} `json:"jobs"`
}

func (c *feedClient) greenhouse(ctx context.Context, slug string) ([]Posting, error) {
	base := c.greenhouseBase
	if base == "" {
		base = "https://boards-api.greenhouse.io/v1/boards"
	}

	var board greenhouseBoard
	if _, err := c.getJSON(ctx, fmt.Sprintf("%s/%s/jobs", base, slug), &board); err != nil {
		return nil, fmt.Errorf("greenhouse %s: %w", slug, err)
	}

	out := make([]Posting, 0, len(board.Jobs))
	for _, j := range board.Jobs {
		if j.AbsoluteURL == "" {
			continue
		}
		out = append(out, Posting{
			Title:    strings.TrimSpace(j.Title),
			Location: strings.TrimSpace(j.Location.Name),
			URL:      j.AbsoluteURL,
		})
	}
	return out, nil
}
