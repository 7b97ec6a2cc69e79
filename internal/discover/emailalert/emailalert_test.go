package emailalert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolescout/internal/domain"
)

const alertHTML = `
<html><body>
<table>
  <tr>
    <td><a href="https://www.linkedin.com/comm/jobs/view/4012345678?trackingId=abc&refId=xyz">
      <img alt="Acme Corp" src="logo.png"></a></td>
    <td>
      <a href="https://www.linkedin.com/comm/jobs/view/4012345678?trackingId=def">Business Operations Lead</a>
      <p>Acme Corp · San Francisco, CA</p>
    </td>
  </tr>
</table>
<table>
  <tr>
    <td>
      <a href="https://www.linkedin.com/jobs/view/business-operations-manager-at-beta-4087654321">Business Operations Manager</a>
      <p>Beta Inc · Remote</p>
    </td>
  </tr>
</table>
<a href="https://www.linkedin.com/jobs/view/4012345678">View job</a>
<a href="https://www.linkedin.com/e/unsubscribe">Unsubscribe</a>
</body></html>`

func TestParseAlertCardsMergesAnchorsPerJob(t *testing.T) {
	cards, err := ParseAlertCards(alertHTML)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, "Business Operations Lead", cards[0].Title)
	assert.Equal(t, "Acme Corp", cards[0].Company)
	assert.Equal(t, "San Francisco, CA", cards[0].Location)

	assert.Equal(t, "Business Operations Manager", cards[1].Title)
	assert.Equal(t, "Beta Inc", cards[1].Company)
	assert.Equal(t, "Remote", cards[1].Location)
}

func TestParseAlertCardsCompanyFromBareCell(t *testing.T) {
	// No logo and no p element: the company line sits in the same td as
	// the title anchor, whose text must not leak into the company.
	html := `<table><tr><td>
<a href="https://www.linkedin.com/jobs/view/4055555555">Strategy Operations Lead</a>
Gamma Co · Austin, TX
</td></tr></table>`

	cards, err := ParseAlertCards(html)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Strategy Operations Lead", cards[0].Title)
	assert.Equal(t, "Gamma Co", cards[0].Company)
	assert.Equal(t, "Austin, TX", cards[0].Location)
}

func TestParseAlertCardsSkipsCTAOnlyAnchors(t *testing.T) {
	html := `<a href="https://www.linkedin.com/jobs/view/4099999999">View job</a>`
	cards, err := ParseAlertCards(html)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestExtractURLs(t *testing.T) {
	html := `<a href="https://jobs.lever.co/acme/123?lever-source=email">apply</a>
<a href="https://jobs.lever.co/acme/123?lever-source=email">apply again</a>`
	text := "See https://jobs.lever.co/beta/456 for details."

	urls := ExtractURLs(html, text)
	require.Len(t, urls, 2)
	assert.Equal(t, "https://jobs.lever.co/acme/123?lever-source=email", urls[0])
	assert.Equal(t, "https://jobs.lever.co/beta/456", urls[1])
}

type fakeInbox struct {
	msgs []Message
	got  struct {
		senders []string
		since   time.Time
		max     int
	}
}

func (f *fakeInbox) Fetch(_ context.Context, senders []string, since time.Time, max int) ([]Message, error) {
	f.got.senders = senders
	f.got.since = since
	f.got.max = max
	return f.msgs, nil
}

func TestAdapterDiscover(t *testing.T) {
	inbox := &fakeInbox{msgs: []Message{
		{Subject: "30 new jobs for business operations", HTML: alertHTML},
		{Subject: "30 new jobs for business operations", HTML: alertHTML}, // duplicate alert
	}}
	a := &Adapter{
		Inbox:       inbox,
		Senders:     []string{"jobs-noreply@linkedin.com"},
		WindowDays:  14,
		MaxMessages: 50,
	}

	cands, sum, err := a.Discover(context.Background())
	require.NoError(t, err)

	// Two jobs, each appearing in both messages, deduped to two.
	require.Len(t, cands, 2)
	assert.Equal(t, 2, sum.Emitted)
	assert.Equal(t, 4, sum.Seen)

	assert.Equal(t, "https://www.linkedin.com/jobs/view/4012345678", cands[0].CanonicalURL)
	assert.Equal(t, domain.SourceEmailAlert, cands[0].Source)
	assert.Equal(t, domain.ATSLinkedIn, cands[0].ATS)
	assert.Equal(t, "30 new jobs for business operations", cands[0].Query)

	// Tracking id and slug variants collapse to the numeric id form.
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4087654321", cands[1].CanonicalURL)

	assert.Equal(t, []string{"jobs-noreply@linkedin.com"}, inbox.got.senders)
	assert.Equal(t, 50, inbox.got.max)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -14), inbox.got.since, time.Minute)
}

func TestAdapterPlatformFilter(t *testing.T) {
	inbox := &fakeInbox{msgs: []Message{{
		Subject: "New jobs at Acme",
		Text: "https://jobs.lever.co/acme/11111111-2222-3333-4444-555555555555\n" +
			"https://example.com/not-a-board\n",
	}}}
	a := &Adapter{
		Inbox:          inbox,
		Senders:        []string{"no-reply@jobs.lever.co"},
		WindowDays:     7,
		PlatformFilter: "jobs.lever.co",
	}

	cands, _, err := a.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "https://jobs.lever.co/acme/11111111-2222-3333-4444-555555555555", cands[0].CanonicalURL)
	assert.Equal(t, domain.ATSLever, cands[0].ATS)
	assert.Equal(t, "acme", cands[0].Company)
}
