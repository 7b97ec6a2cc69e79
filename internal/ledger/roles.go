package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rolescout/internal/domain"
)

const roleColumns = `
canonical_url, company, job_title, source, ats, discovered_date, status, query,
jd_text, location_raw, work_mode_hint, http_status, failure_reason, fetched_at, enriched_at,
fit_score, fit_notes, dealbreaker_flag, location_us_ok, comp_ok, work_mode_final, rank_key`

// Has reports whether a canonical URL is already in the ledger.
func (l *Ledger) Has(ctx context.Context, canonicalURL string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx,
		`SELECT 1 FROM roles WHERE canonical_url = ? LIMIT 1;`, canonicalURL).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// KnownURLs returns the membership snapshot used by adapters for
// in-run dedup. Callers add newly inserted keys to it as they go.
func (l *Ledger) KnownURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT canonical_url FROM roles;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out[u] = struct{}{}
	}
	return out, rows.Err()
}

// Insert adds a candidate if its canonical URL is absent. Returns true
// when a new row was created; false means the key already existed.
func (l *Ledger) Insert(ctx context.Context, c domain.Candidate) (bool, error) {
	if c.CanonicalURL == "" {
		return false, fmt.Errorf("insert role: empty canonical url")
	}
	ats := c.ATS
	if ats == "" {
		ats = domain.ATSUnknown
	}

	res, err := l.db.ExecContext(ctx, `
INSERT OR IGNORE INTO roles(canonical_url, company, job_title, source, ats, discovered_date, status, query, location_raw)
VALUES(?,?,?,?,?,?,?,?,?);`,
		c.CanonicalURL,
		c.Company,
		c.Title,
		string(c.Source),
		string(ats),
		time.Now().UTC().Format(time.RFC3339),
		string(domain.StatusNew),
		c.Query,
		c.Location,
	)
	if err != nil {
		return false, fmt.Errorf("insert role: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Get fetches a single record by canonical URL.
func (l *Ledger) Get(ctx context.Context, canonicalURL string) (domain.RoleRecord, bool, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE canonical_url = ?;`, canonicalURL)
	rec, err := scanRole(row)
	if err == sql.ErrNoRows {
		return domain.RoleRecord{}, false, nil
	}
	if err != nil {
		return domain.RoleRecord{}, false, err
	}
	return rec, true, nil
}

// ListByStatus returns all records in the given status, oldest first.
func (l *Ledger) ListByStatus(ctx context.Context, status domain.Status) ([]domain.RoleRecord, error) {
	return l.list(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE status = ? ORDER BY discovered_date;`,
		string(status))
}

// ListFetchable returns New records eligible for enrichment: fetch-enabled
// source and no already-good content. Records whose jd_text length exceeds
// protectLen carry authoritative content and are excluded so a noisy retry
// can never clobber them.
func (l *Ledger) ListFetchable(ctx context.Context, protectLen int) ([]domain.RoleRecord, error) {
	return l.list(ctx, `
SELECT `+roleColumns+`
FROM roles
WHERE status = ?
  AND length(trim(jd_text)) <= ?
ORDER BY discovered_date;`,
		string(domain.StatusNew), protectLen)
}

// ListScorable returns records eligible for fit scoring: Enriched, plus
// FetchError rows whose only problem was short content (the title still
// carries signal for coarse triage).
func (l *Ledger) ListScorable(ctx context.Context) ([]domain.RoleRecord, error) {
	return l.list(ctx, `
SELECT `+roleColumns+`
FROM roles
WHERE status = ?
   OR (status = ? AND failure_reason = ?)
ORDER BY discovered_date;`,
		string(domain.StatusEnriched), string(domain.StatusFetchError), "TEXT_TOO_SHORT")
}

// ListRanked returns scored records ordered by rank key descending, so
// the best-scoring roles come first with deterministic tie-breaks.
func (l *Ledger) ListRanked(ctx context.Context, limit int) ([]domain.RoleRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return l.list(ctx, `
SELECT `+roleColumns+`
FROM roles
WHERE rank_key != ''
ORDER BY rank_key DESC
LIMIT ?;`, limit)
}

// KnownJobURLs returns every stored canonical URL in insertion-date
// order. Board rotation is derived from these.
func (l *Ledger) KnownJobURLs(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT canonical_url FROM roles ORDER BY discovered_date;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// MarkEnriched stores a successful fetch: content plus hints, status
// Enriched, failure cleared, both attempt and enrichment stamps set.
func (l *Ledger) MarkEnriched(ctx context.Context, canonicalURL, jdText, locationRaw, workModeHint string, httpStatus int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := l.db.ExecContext(ctx, `
UPDATE roles
SET jd_text = ?, location_raw = ?, work_mode_hint = ?,
    http_status = ?, failure_reason = '',
    status = ?, fetched_at = ?, enriched_at = ?
WHERE canonical_url = ?;`,
		jdText, locationRaw, workModeHint,
		httpStatus, string(domain.StatusEnriched), now, now,
		canonicalURL,
	)
	if err != nil {
		return fmt.Errorf("mark enriched: %w", err)
	}
	return nil
}

// MarkFetchFailed records a failed attempt. Enrichment fields are cleared
// so partial or junk content is never persisted; dead selects status Dead
// (not-found class) over FetchError.
func (l *Ledger) MarkFetchFailed(ctx context.Context, canonicalURL, reason string, httpStatus int, dead bool) error {
	status := domain.StatusFetchError
	if dead {
		status = domain.StatusDead
	}
	_, err := l.db.ExecContext(ctx, `
UPDATE roles
SET jd_text = '', location_raw = '', work_mode_hint = '', enriched_at = '',
    http_status = ?, failure_reason = ?,
    status = ?, fetched_at = ?
WHERE canonical_url = ?;`,
		httpStatus, reason, string(status),
		time.Now().UTC().Format(time.RFC3339),
		canonicalURL,
	)
	if err != nil {
		return fmt.Errorf("mark fetch failed: %w", err)
	}
	return nil
}

// ResetToNew clears all enrichment fields and telemetry and returns the
// record to New. This is the only path that moves a record backward.
func (l *Ledger) ResetToNew(ctx context.Context, canonicalURL string) error {
	_, err := l.db.ExecContext(ctx, `
UPDATE roles
SET jd_text = '', location_raw = '', work_mode_hint = '',
    http_status = 0, failure_reason = '', fetched_at = '', enriched_at = '',
    status = ?
WHERE canonical_url = ?;`,
		string(domain.StatusNew), canonicalURL)
	if err != nil {
		return fmt.Errorf("reset to new: %w", err)
	}
	return nil
}

// SetStatusWhereFailure moves every record with one of the given failure
// reasons to the target status, regardless of current status. Returns the
// number of rows changed.
func (l *Ledger) SetStatusWhereFailure(ctx context.Context, reasons []string, status domain.Status) (int, error) {
	if len(reasons) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(reasons)+2)
	args = append(args, string(status))
	placeholders := ""
	for i, r := range reasons {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, r)
	}
	args = append(args, string(status))

	res, err := l.db.ExecContext(ctx, `
UPDATE roles
SET status = ?
WHERE failure_reason IN (`+placeholders+`)
  AND status != ?;`, args...)
	if err != nil {
		return 0, fmt.Errorf("set status by failure: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ScoreUpdate is the scoring output written back to a record. Scoring
// never touches fetch or status fields.
type ScoreUpdate struct {
	FitScore        int
	FitNotes        string
	DealbreakerFlag bool
	LocationUSOK    string
	CompOK          string
	WorkModeFinal   string
	RankKey         string
}

func (l *Ledger) SaveScore(ctx context.Context, canonicalURL string, s ScoreUpdate) error {
	flag := "FALSE"
	if s.DealbreakerFlag {
		flag = "TRUE"
	}
	_, err := l.db.ExecContext(ctx, `
UPDATE roles
SET fit_score = ?, fit_notes = ?, dealbreaker_flag = ?,
    location_us_ok = ?, comp_ok = ?, work_mode_final = ?, rank_key = ?
WHERE canonical_url = ?;`,
		s.FitScore, s.FitNotes, flag,
		s.LocationUSOK, s.CompOK, s.WorkModeFinal, s.RankKey,
		canonicalURL,
	)
	if err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	return nil
}

func (l *Ledger) list(ctx context.Context, query string, args ...any) ([]domain.RoleRecord, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoleRecord
	for rows.Next() {
		rec, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (domain.RoleRecord, error) {
	var r domain.RoleRecord
	var source, ats, status, discovered, fetchedAt, enrichedAt, dealbreaker string
	err := row.Scan(
		&r.CanonicalURL, &r.Company, &r.JobTitle, &source, &ats, &discovered, &status, &r.Query,
		&r.JDText, &r.LocationRaw, &r.WorkModeHint, &r.HTTPStatus, &r.FailureReason, &fetchedAt, &enrichedAt,
		&r.FitScore, &r.FitNotes, &dealbreaker, &r.LocationUSOK, &r.CompOK, &r.WorkModeFinal, &r.RankKey,
	)
	if err != nil {
		return r, err
	}
	r.Source = domain.Source(source)
	r.ATS = domain.ATS(ats)
	r.Status = domain.Status(status)
	r.DealbreakerFlag = dealbreaker == "TRUE"
	if t, err := time.Parse(time.RFC3339, discovered); err == nil {
		r.DiscoveredDate = t
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		r.FetchedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, enrichedAt); err == nil {
		r.EnrichedAt = &t
	}
	return r, nil
}
