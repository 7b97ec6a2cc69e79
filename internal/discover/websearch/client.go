package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rolescout/internal/pace"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

// Result is one organic web result.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type searchResponse struct {
	Query struct {
		MoreResultsAvailable bool `json:"more_results_available"`
	} `json:"query"`
	Web struct {
		Results []Result `json:"results"`
	} `json:"web"`
}

// Page is one page of search results.
type Page struct {
	Results              []Result
	MoreResultsAvailable bool
}

// Client calls the web-search provider API.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *pace.HostLimiter
}

func (c *Client) Search(ctx context.Context, query string, count, offset int, freshness string) (Page, error) {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("count", strconv.Itoa(count))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("country", "us")
	q.Set("search_lang", "en")
	if freshness != "" {
		q.Set("freshness", freshness)
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
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.Token)

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Page{}, fmt.Errorf("search http %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Page{}, fmt.Errorf("search decode: %w", err)
	}

	return Page{
		Results:              sr.Web.Results,
		MoreResultsAvailable: sr.Query.MoreResultsAvailable,
	}, nil
}
