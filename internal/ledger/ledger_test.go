package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolescout/internal/domain"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "roles.db"))
	require.NoError(t, err)
	require.NoError(t, l.Migrate())
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestInsertDedup(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	c := domain.Candidate{
		CanonicalURL: "https://jobs.lever.co/acme/123",
		Company:      "Acme",
		Title:        "BizOps Lead",
		Source:       domain.SourceSearchProvider,
		ATS:          domain.ATSLever,
		Query:        "site:jobs.lever.co bizops",
	}

	inserted, err := l.Insert(ctx, c)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same key from a different adapter: first write wins, no overwrite.
	c2 := c
	c2.Company = "Different Co"
	c2.Source = domain.SourceEmailAlert
	inserted, err = l.Insert(ctx, c2)
	require.NoError(t, err)
	assert.False(t, inserted)

	rec, ok, err := l.Get(ctx, c.CanonicalURL)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Acme", rec.Company)
	assert.Equal(t, domain.SourceSearchProvider, rec.Source)
	assert.Equal(t, domain.StatusNew, rec.Status)
	assert.False(t, rec.Scored())
}

func TestInsertRejectsEmptyURL(t *testing.T) {
	l := openTestLedger(t)
	_, err := l.Insert(context.Background(), domain.Candidate{Company: "Acme"})
	assert.Error(t, err)
}

func TestInsertDefaultsUnknownATS(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	_, err := l.Insert(ctx, domain.Candidate{
		CanonicalURL: "https://example.com/jobs/1",
		Source:       domain.SourceAggregatorAPI,
	})
	require.NoError(t, err)

	rec, ok, err := l.Get(ctx, "https://example.com/jobs/1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.ATSUnknown, rec.ATS)
}

func TestMarkEnrichedAndFetchable(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	urls := []string{
		"https://jobs.lever.co/acme/1",
		"https://jobs.lever.co/acme/2",
	}
	for _, u := range urls {
		_, err := l.Insert(ctx, domain.Candidate{
			CanonicalURL: u,
			Source:       domain.SourceSearchProvider,
			ATS:          domain.ATSLever,
		})
		require.NoError(t, err)
	}

	fetchable, err := l.ListFetchable(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, fetchable, 2)

	jd := make([]byte, 900)
	for i := range jd {
		jd[i] = 'x'
	}
	require.NoError(t, l.MarkEnriched(ctx, urls[0], string(jd), "Remote (mentioned)", "remote", 200))

	rec, ok, err := l.Get(ctx, urls[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusEnriched, rec.Status)
	assert.Equal(t, 200, rec.HTTPStatus)
	assert.Empty(t, rec.FailureReason)
	require.NotNil(t, rec.FetchedAt)
	require.NotNil(t, rec.EnrichedAt)

	// Enriched rows leave the fetchable set.
	fetchable, err = l.ListFetchable(ctx, 500)
	require.NoError(t, err)
	require.Len(t, fetchable, 1)
	assert.Equal(t, urls[1], fetchable[0].CanonicalURL)
}

func TestMarkFetchFailedClearsContent(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	const u = "https://jobs.lever.co/acme/1"
	_, err := l.Insert(ctx, domain.Candidate{
		CanonicalURL: u,
		Source:       domain.SourceSearchProvider,
		ATS:          domain.ATSLever,
	})
	require.NoError(t, err)
	require.NoError(t, l.MarkEnriched(ctx, u, "some text", "", "", 200))

	require.NoError(t, l.MarkFetchFailed(ctx, u, "HTTP_500", 500, false))

	rec, _, err := l.Get(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFetchError, rec.Status)
	assert.Equal(t, "HTTP_500", rec.FailureReason)
	assert.Empty(t, rec.JDText)
	assert.Nil(t, rec.EnrichedAt)

	require.NoError(t, l.MarkFetchFailed(ctx, u, "HTTP_404", 404, true))
	rec, _, err = l.Get(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDead, rec.Status)
}

func TestListScorable(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	seed := func(u string) {
		_, err := l.Insert(ctx, domain.Candidate{
			CanonicalURL: u,
			Source:       domain.SourceSearchProvider,
			ATS:          domain.ATSLever,
		})
		require.NoError(t, err)
	}
	seed("https://jobs.lever.co/a/1")
	seed("https://jobs.lever.co/a/2")
	seed("https://jobs.lever.co/a/3")
	seed("https://jobs.lever.co/a/4")

	require.NoError(t, l.MarkEnriched(ctx, "https://jobs.lever.co/a/1", "long text", "", "", 200))
	require.NoError(t, l.MarkFetchFailed(ctx, "https://jobs.lever.co/a/2", "TEXT_TOO_SHORT", 200, false))
	require.NoError(t, l.MarkFetchFailed(ctx, "https://jobs.lever.co/a/3", "HTTP_500", 500, false))
	// a/4 stays New.

	scorable, err := l.ListScorable(ctx)
	require.NoError(t, err)
	got := map[string]bool{}
	for _, r := range scorable {
		got[r.CanonicalURL] = true
	}
	assert.True(t, got["https://jobs.lever.co/a/1"])
	assert.True(t, got["https://jobs.lever.co/a/2"])
	assert.False(t, got["https://jobs.lever.co/a/3"])
	assert.False(t, got["https://jobs.lever.co/a/4"])
}

func TestSaveScoreAndListRanked(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	type row struct {
		url  string
		rank string
	}
	rowsIn := []row{
		{"https://jobs.lever.co/a/1", "078-acme-bizops lead"},
		{"https://jobs.lever.co/b/1", "091-beta-head of operations"},
		{"https://jobs.lever.co/c/1", "012-gamma-payroll specialist"},
	}
	for _, r := range rowsIn {
		_, err := l.Insert(ctx, domain.Candidate{
			CanonicalURL: r.url,
			Source:       domain.SourceSearchProvider,
			ATS:          domain.ATSLever,
		})
		require.NoError(t, err)
		require.NoError(t, l.SaveScore(ctx, r.url, ScoreUpdate{
			FitScore: 50, RankKey: r.rank, LocationUSOK: "TRUE", CompOK: "UNKNOWN",
		}))
	}

	ranked, err := l.ListRanked(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "https://jobs.lever.co/b/1", ranked[0].CanonicalURL)
	assert.Equal(t, "https://jobs.lever.co/a/1", ranked[1].CanonicalURL)
	assert.Equal(t, "https://jobs.lever.co/c/1", ranked[2].CanonicalURL)
	assert.True(t, ranked[0].Scored())
}

func TestResetToNew(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	const u = "https://jobs.ashbyhq.com/acme/abc"
	_, err := l.Insert(ctx, domain.Candidate{
		CanonicalURL: u,
		Source:       domain.SourceATSFeed,
		ATS:          domain.ATSAshby,
	})
	require.NoError(t, err)
	require.NoError(t, l.MarkEnriched(ctx, u, "content", "Remote (mentioned)", "remote", 200))

	require.NoError(t, l.ResetToNew(ctx, u))

	rec, _, err := l.Get(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, rec.Status)
	assert.Empty(t, rec.JDText)
	assert.Empty(t, rec.FailureReason)
	assert.Zero(t, rec.HTTPStatus)
	assert.Nil(t, rec.FetchedAt)
	assert.Nil(t, rec.EnrichedAt)
}

func TestSetStatusWhereFailure(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	seed := func(u, reason string) {
		_, err := l.Insert(ctx, domain.Candidate{
			CanonicalURL: u,
			Source:       domain.SourceSearchProvider,
			ATS:          domain.ATSLever,
		})
		require.NoError(t, err)
		require.NoError(t, l.MarkFetchFailed(ctx, u, reason, 0, false))
	}
	seed("https://jobs.lever.co/a/1", "HTTP_404")
	seed("https://jobs.lever.co/a/2", "LEVER_404_PAGE")
	seed("https://jobs.lever.co/a/3", "HTTP_500")

	n, err := l.SetStatusWhereFailure(ctx, []string{"HTTP_404", "LEVER_404_PAGE"}, domain.StatusDead)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, _, err := l.Get(ctx, "https://jobs.lever.co/a/3")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFetchError, rec.Status)

	// Idempotent: already-Dead rows are untouched.
	n, err = l.SetStatusWhereFailure(ctx, []string{"HTTP_404", "LEVER_404_PAGE"}, domain.StatusDead)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMigrateIdempotent(t *testing.T) {
	l := openTestLedger(t)
	require.NoError(t, l.Migrate())
	require.NoError(t, l.Migrate())
}

func TestAppendAndRecentLogs(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.AppendLog(ctx, "discover", "email_alert: 3 inserted, 2 known"))
	require.NoError(t, l.AppendLog(ctx, "enrich", "12 attempted, 9 enriched"))

	lines, err := l.RecentLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "enrich", lines[0].Stage)
	assert.Equal(t, "discover", lines[1].Stage)
	assert.False(t, lines[0].TS.IsZero())
}
