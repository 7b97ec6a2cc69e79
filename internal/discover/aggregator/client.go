package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rolescout/internal/pace"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// JobResult is one result from the jobs metasearch engine.
type JobResult struct {
	Title              string `json:"title"`
	CompanyName        string `json:"company_name"`
	Location           string `json:"location"`
	DetectedExtensions struct {
		PostedAt string `json:"posted_at"`
	} `json:"detected_extensions"`
	ApplyOptions []ApplyOption `json:"apply_options"`
}

type ApplyOption struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type searchResponse struct {
	JobsResults []JobResult `json:"jobs_results"`
	Pagination  struct {
		NextPageToken string `json:"next_page_token"`
	} `json:"serpapi_pagination"`
}

// Page is one page of metasearch results plus the cursor for the next.
type Page struct {
	Results       []JobResult
	NextPageToken string
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *pace.HostLimiter
}

func (c *Client) Search(ctx context.Context, query, pageToken string) (Page, error) {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	q := url.Values{}
	q.Set("engine", "google_jobs")
	q.Set("q", query)
	q.Set("hl", "en")
	q.Set("gl", "us")
	q.Set("api_key", c.APIKey)
	if pageToken != "" {
		q.Set("next_page_token", pageToken)
	}
	reqURL := base + "?" + q.Encode()

	if c.Limiter != nil {
		if err := c.Limiter.WaitURL(ctx, reqURL); err != nil {
			return Page{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Page{}, err
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("metasearch request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Page{}, fmt.Errorf("metasearch http %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Page{}, fmt.Errorf("metasearch decode: %w", err)
	}
	return Page{
		Results:       sr.JobsResults,
		NextPageToken: sr.Pagination.NextPageToken,
	}, nil
}
