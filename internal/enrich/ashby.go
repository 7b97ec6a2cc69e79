package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rolescout/internal/pace"
)

// Ashby job pages are rendered client-side; a plain GET returns a
// near-empty shell. The public posting API carries the full description
// instead, keyed by board.

type ashbyJob struct {
	Title            string `json:"title"`
	Location         string `json:"location"`
	WorkplaceType    string `json:"workplaceType"`
	IsRemote         bool   `json:"isRemote"`
	JobURL           string `json:"jobUrl"`
	DescriptionPlain string `json:"descriptionPlain"`
	DescriptionHTML  string `json:"descriptionHtml"`
}

type ashbyBoardResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// Structured is a description obtained from a posting API rather than
// scraped HTML.
type Structured struct {
	Text        string
	LocationRaw string
	WorkMode    string
}

type ashbyClient struct {
	base    string // https://api.ashbyhq.com/posting-api/job-board
	hc      *http.Client
	limiter *pace.HostLimiter
}

func newAshbyClient(base string, hc *http.Client, limiter *pace.HostLimiter) *ashbyClient {
	if base == "" {
		base = "https://api.ashbyhq.com/posting-api/job-board"
	}
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	return &ashbyClient{base: base, hc: hc, limiter: limiter}
}

// FetchStructured looks the job URL up on its board's posting API.
// Returns nil when the board is unreachable or no job matches.
func (c *ashbyClient) FetchStructured(ctx context.Context, jobURL string) (*Structured, error) {
	board := firstPathSegment(jobURL)
	if board == "" {
		return nil, nil
	}

	apiURL := fmt.Sprintf("%s/%s", c.base, url.PathEscape(board))
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, nil
	}

	var board2 ashbyBoardResponse
	if err := json.NewDecoder(res.Body).Decode(&board2); err != nil {
		return nil, nil
	}

	job := matchAshbyJob(jobURL, board2.Jobs)
	if job == nil {
		return nil, nil
	}

	text := strings.TrimSpace(job.DescriptionPlain)
	if text == "" && job.DescriptionHTML != "" {
		text = HTMLToText(job.DescriptionHTML)
	}
	workMode := strings.TrimSpace(job.WorkplaceType)
	if job.IsRemote && !strings.EqualFold(workMode, "remote") {
		if workMode == "" {
			workMode = "remote"
		} else {
			workMode += ", remote"
		}
	}
	return &Structured{
		Text:        text,
		LocationRaw: strings.TrimSpace(job.Location),
		WorkMode:    workMode,
	}, nil
}

// matchAshbyJob pairs a stored URL with a board job. Boards rewrite
// their URL shapes over time, so matching is loose: exact path, suffix
// either direction, substring either direction, or first+last path
// segments agreeing.
func matchAshbyJob(jobURL string, jobs []ashbyJob) *ashbyJob {
	canon := normalizeForMatch(jobURL)
	canonPath := pathOf(canon)
	canonSegs := segmentsOf(canonPath)

	for i := range jobs {
		ju := normalizeForMatch(jobs[i].JobURL)
		if ju == "" {
			continue
		}
		juPath := pathOf(ju)
		juSegs := segmentsOf(juPath)

		exact := canonPath == juPath || canon == ju ||
			strings.HasSuffix(canonPath, juPath) || strings.HasSuffix(juPath, canonPath) ||
			strings.Contains(canon, ju) || strings.Contains(ju, canon)
		boardAndSlug := len(canonSegs) >= 2 && len(juSegs) >= 1 &&
			canonSegs[0] == juSegs[0] &&
			canonSegs[len(canonSegs)-1] == juSegs[len(juSegs)-1]

		if exact || boardAndSlug {
			return &jobs[i]
		}
	}
	return nil
}

func normalizeForMatch(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}

func pathOf(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func segmentsOf(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func firstPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segs := segmentsOf(u.Path)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}
