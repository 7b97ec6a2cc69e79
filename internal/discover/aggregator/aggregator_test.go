package aggregator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolescout/internal/domain"
)

func TestCompanyToSlug(t *testing.T) {
	assert.Equal(t, "acme", companyToSlug("Acme, Inc."))
	assert.Equal(t, "betalabs", companyToSlug("Beta Labs"))
	assert.Equal(t, "", companyToSlug("---"))

	// Leading "The" and corporate suffixes never make it into board slugs.
	assert.Equal(t, "mitre", companyToSlug("The MITRE Corporation"))
	assert.Equal(t, "globex", companyToSlug("Globex LLC"))
	assert.True(t, slugMatchesCompany("mitre", companyToSlug("The MITRE Corporation")))
}

func TestPickBestApplyURL(t *testing.T) {
	tests := []struct {
		name    string
		company string
		options []ApplyOption
		want    string
	}{
		{
			name:    "board link beats aggregator mirror",
			company: "Acme Inc",
			options: []ApplyOption{
				{Title: "ZipRecruiter", Link: "https://www.ziprecruiter.com/jobs/123"},
				{Title: "Lever", Link: "https://jobs.lever.co/acme-inc/11111111-2222-3333-4444-555555555555"},
			},
			want: "https://jobs.lever.co/acme-inc/11111111-2222-3333-4444-555555555555",
		},
		{
			name:    "lever outranks greenhouse",
			company: "Acme",
			options: []ApplyOption{
				{Link: "https://boards.greenhouse.io/acme/jobs/4012345"},
				{Link: "https://jobs.lever.co/acme/11111111-2222-3333-4444-555555555555"},
			},
			want: "https://jobs.lever.co/acme/11111111-2222-3333-4444-555555555555",
		},
		{
			name:    "slug mismatch falls through to linkedin",
			company: "Acme",
			options: []ApplyOption{
				{Link: "https://jobs.lever.co/othercorp/11111111-2222-3333-4444-555555555555"},
				{Link: "https://www.linkedin.com/jobs/view/4012345678"},
			},
			want: "https://www.linkedin.com/jobs/view/4012345678",
		},
		{
			name:    "first option as last resort",
			company: "Acme",
			options: []ApplyOption{
				{Link: "https://www.ziprecruiter.com/jobs/123"},
				{Link: "https://www.indeed.com/viewjob?jk=abc"},
			},
			want: "https://www.ziprecruiter.com/jobs/123",
		},
		{
			name:    "no options",
			company: "Acme",
			options: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickBestApplyURL(tt.company, tt.options))
		})
	}
}

func TestAdapterDiscoverFollowsCursor(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "google_jobs", r.URL.Query().Get("engine"))
		require.Equal(t, "key", r.URL.Query().Get("api_key"))
		token := r.URL.Query().Get("next_page_token")
		calls = append(calls, token)

		var body searchResponse
		switch token {
		case "":
			body.JobsResults = []JobResult{{
				Title:       "Business Operations Lead",
				CompanyName: "Acme",
				Location:    "San Francisco, CA",
				ApplyOptions: []ApplyOption{
					{Title: "Lever", Link: "https://jobs.lever.co/acme/11111111-2222-3333-4444-555555555555?utm_source=google_jobs"},
				},
			}}
			body.JobsResults[0].DetectedExtensions.PostedAt = "3 days ago"
			body.Pagination.NextPageToken = "page2"
		case "page2":
			body.JobsResults = []JobResult{{
				Title:       "Chief of Staff",
				CompanyName: "Beta",
				ApplyOptions: []ApplyOption{
					{Link: "https://www.linkedin.com/jobs/view/strategy-at-beta-4087654321?refId=xyz"},
				},
			}}
			// No further token: loop ends before MaxPages.
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	a := &Adapter{
		Client:   &Client{APIKey: "key", BaseURL: srv.URL},
		Queries:  []string{`"business operations" OR "chief of staff"`},
		MaxPages: 5,
	}

	cands, sum, err := a.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "page2"}, calls)

	require.Len(t, cands, 2)
	assert.Equal(t, "https://jobs.lever.co/acme/11111111-2222-3333-4444-555555555555", cands[0].CanonicalURL)
	assert.Equal(t, domain.ATSLever, cands[0].ATS)
	assert.Equal(t, "Acme", cands[0].Company)
	assert.Equal(t, domain.SourceAggregatorAPI, cands[0].Source)

	assert.Equal(t, "https://www.linkedin.com/jobs/view/4087654321", cands[1].CanonicalURL)
	assert.Equal(t, domain.ATSLinkedIn, cands[1].ATS)

	assert.Equal(t, 2, sum.Seen)
	assert.Equal(t, 2, sum.Emitted)
	assert.Contains(t, sum.Notes, "posted-age sample: 3 days ago")
}
