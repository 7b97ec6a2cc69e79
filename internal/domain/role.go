package domain

import "time"

// Source is the discovery origin of a record. Immutable once set.
type Source string

const (
	SourceEmailAlert     Source = "email_alert"
	SourceSearchProvider Source = "search_provider"
	SourceATSFeed        Source = "ats_feed"
	SourceAggregatorAPI  Source = "aggregator_api"
)

// ATS is the platform hosting the posting.
type ATS string

const (
	ATSLever      ATS = "lever"
	ATSAshby      ATS = "ashby"
	ATSGreenhouse ATS = "greenhouse"
	ATSLinkedIn   ATS = "linkedin"
	ATSOther      ATS = "other"
	ATSUnknown    ATS = "unknown"
)

// Status is the enrichment lifecycle cursor.
// New -> {Enriched, FetchError, Dead}; only explicit resets move a record back.
type Status string

const (
	StatusNew        Status = "New"
	StatusEnriched   Status = "Enriched"
	StatusFetchError Status = "FetchError"
	StatusDead       Status = "Dead"
)

// Candidate is a not-yet-persisted discovery result from one adapter.
type Candidate struct {
	CanonicalURL string
	Company      string
	Title        string
	Location     string
	Source       Source
	ATS          ATS
	Query        string
}

// RoleRecord is one discovered posting, keyed by canonical URL.
type RoleRecord struct {
	CanonicalURL   string
	Company        string
	JobTitle       string
	Source         Source
	ATS            ATS
	DiscoveredDate time.Time
	Status         Status
	Query          string

	// Enrichment payload, empty until a successful fetch.
	JDText       string
	LocationRaw  string
	WorkModeHint string

	// Last fetch attempt telemetry (any outcome).
	HTTPStatus    int
	FailureReason string
	FetchedAt     *time.Time
	EnrichedAt    *time.Time

	// Scoring output; present only after scoring (RankKey != "").
	FitScore        int
	FitNotes        string
	DealbreakerFlag bool
	LocationUSOK    string // TRUE / FALSE
	CompOK          string // TRUE / FALSE / UNKNOWN
	WorkModeFinal   string
	RankKey         string
}

// Scored reports whether scoring output is present on the record.
func (r RoleRecord) Scored() bool { return r.RankKey != "" }
