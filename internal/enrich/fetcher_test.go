package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolescout/internal/domain"
)

type markCall struct {
	text       string
	location   string
	workMode   string
	httpStatus int
	reason     string
	dead       bool
}

type fakeStore struct {
	fetchable []domain.RoleRecord
	enriched  map[string]markCall
	failed    map[string]markCall
}

func newFakeStore(recs ...domain.RoleRecord) *fakeStore {
	return &fakeStore{
		fetchable: recs,
		enriched:  map[string]markCall{},
		failed:    map[string]markCall{},
	}
}

func (s *fakeStore) ListFetchable(context.Context, int) ([]domain.RoleRecord, error) {
	return s.fetchable, nil
}

func (s *fakeStore) MarkEnriched(_ context.Context, url, jd, loc, mode string, status int) error {
	s.enriched[url] = markCall{text: jd, location: loc, workMode: mode, httpStatus: status}
	return nil
}

func (s *fakeStore) MarkFetchFailed(_ context.Context, url, reason string, status int, dead bool) error {
	s.failed[url] = markCall{reason: reason, httpStatus: status, dead: dead}
	return nil
}

func goodJD() string {
	var b strings.Builder
	b.WriteString("<h1>Business Operations Lead</h1><p>Remote (US)</p>")
	for i := 0; i < 60; i++ {
		b.WriteString("<p>Own quarterly planning and operating cadence across the company.</p>")
	}
	b.WriteString("<p>Similar jobs</p><p>Junk sidebar role</p>")
	return b.String()
}

func TestFetcherClassification(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, goodJD())
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such page", http.StatusNotFound)
	})
	mux.HandleFunc("/soft404", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<p>404 error</p><p>This posting does not exist.</p>")
	})
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<p>tiny</p>")
	})
	mux.HandleFunc("/demo", func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		for i := 0; i < 60; i++ {
			b.WriteString("<p>Jobs at DemoCorp, the permanent placeholder company board.</p>")
		}
		fmt.Fprint(w, b.String())
	})
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rec := func(path string) domain.RoleRecord {
		return domain.RoleRecord{
			CanonicalURL: srv.URL + path,
			ATS:          domain.ATSLever,
			Status:       domain.StatusNew,
		}
	}
	store := newFakeStore(
		rec("/good"), rec("/gone"), rec("/soft404"),
		rec("/short"), rec("/demo"), rec("/flaky"),
	)

	f := &Fetcher{Store: store, HTTPClient: srv.Client()}
	stats, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Scanned)
	assert.Equal(t, 1, stats.Enriched)
	assert.Equal(t, 5, stats.Failed)

	good := store.enriched[srv.URL+"/good"]
	assert.Equal(t, 200, good.httpStatus)
	assert.Contains(t, good.text, "Business Operations Lead")
	assert.NotContains(t, good.text, "Junk sidebar role")
	assert.Equal(t, "Remote (mentioned)", good.location)
	assert.Equal(t, "remote", good.workMode)

	gone := store.failed[srv.URL+"/gone"]
	assert.Equal(t, "HTTP_404", gone.reason)
	assert.True(t, gone.dead)

	soft := store.failed[srv.URL+"/soft404"]
	assert.Equal(t, "LEVER_404_PAGE", soft.reason)
	assert.Equal(t, 200, soft.httpStatus)
	assert.True(t, soft.dead)

	short := store.failed[srv.URL+"/short"]
	assert.Equal(t, "TEXT_TOO_SHORT", short.reason)
	assert.False(t, short.dead)

	demo := store.failed[srv.URL+"/demo"]
	assert.Equal(t, "DEMO_BOARD", demo.reason)
	assert.False(t, demo.dead)

	flaky := store.failed[srv.URL+"/flaky"]
	assert.Equal(t, "HTTP_502", flaky.reason)
	assert.Equal(t, 502, flaky.httpStatus)
	assert.False(t, flaky.dead)
}

func TestFetcherTransportErrorIsException(t *testing.T) {
	store := newFakeStore(domain.RoleRecord{
		CanonicalURL: "http://127.0.0.1:1/nothing-listens-here",
		ATS:          domain.ATSLever,
	})
	f := &Fetcher{Store: store}
	stats, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	call := store.failed["http://127.0.0.1:1/nothing-listens-here"]
	assert.Equal(t, "EXCEPTION", call.reason)
	assert.Zero(t, call.httpStatus)
	assert.False(t, call.dead)
}

func TestFetcherAttemptBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, goodJD())
	}))
	defer srv.Close()

	var recs []domain.RoleRecord
	for i := 0; i < 10; i++ {
		recs = append(recs, domain.RoleRecord{
			CanonicalURL: fmt.Sprintf("%s/job-%d", srv.URL, i),
			ATS:          domain.ATSLever,
		})
	}
	store := newFakeStore(recs...)

	f := &Fetcher{Store: store, HTTPClient: srv.Client(), MaxAttempts: 3}
	stats, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Enriched+stats.Failed)
	assert.Equal(t, 3, stats.Scanned)
}

func TestFetcherAshbyStructured(t *testing.T) {
	longDesc := strings.Repeat("Own the operating cadence. ", 20)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/acme", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jobs": []map[string]any{
				{
					"title":            "Chief of Staff",
					"location":         "New York",
					"workplaceType":    "Hybrid",
					"jobUrl":           "https://jobs.ashbyhq.com/acme/abc-123",
					"descriptionPlain": longDesc,
				},
				{
					"title":            "Unrelated",
					"jobUrl":           "https://jobs.ashbyhq.com/acme/zzz-999",
					"descriptionPlain": "short",
				},
			},
		})
	}))
	defer api.Close()

	matched := domain.RoleRecord{
		CanonicalURL: "https://jobs.ashbyhq.com/acme/abc-123",
		ATS:          domain.ATSAshby,
	}
	unmatched := domain.RoleRecord{
		CanonicalURL: "https://jobs.ashbyhq.com/acme/missing-job",
		ATS:          domain.ATSAshby,
	}
	store := newFakeStore(matched, unmatched)

	f := &Fetcher{Store: store, AshbyAPIBase: api.URL}
	stats, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Enriched)
	assert.Equal(t, 1, stats.Failed)

	ok := store.enriched[matched.CanonicalURL]
	assert.Equal(t, strings.TrimSpace(longDesc), ok.text)
	assert.Equal(t, "New York", ok.location)
	assert.Equal(t, "Hybrid", ok.workMode)
	assert.Equal(t, 200, ok.httpStatus)

	miss := store.failed[unmatched.CanonicalURL]
	assert.Equal(t, "TEXT_TOO_SHORT", miss.reason)
	assert.Equal(t, 200, miss.httpStatus)
	assert.False(t, miss.dead)
}

func TestMatchAshbyJob(t *testing.T) {
	jobs := []ashbyJob{
		{Title: "A", JobURL: "https://jobs.ashbyhq.com/acme/abc-123"},
		{Title: "B", JobURL: "https://jobs.ashbyhq.com/acme/def-456/application"},
	}

	assert.Equal(t, "A", matchAshbyJob("https://jobs.ashbyhq.com/acme/abc-123", jobs).Title)
	// Trailing slash and fragment are ignored.
	assert.Equal(t, "A", matchAshbyJob("https://jobs.ashbyhq.com/acme/abc-123/#apply", jobs).Title)
	// First and last segments agreeing is enough.
	assert.Equal(t, "B", matchAshbyJob("https://jobs.ashbyhq.com/acme/something/application", jobs).Title)
	assert.Nil(t, matchAshbyJob("https://jobs.ashbyhq.com/acme/zzz-000", jobs))
}
