package enrich

import (
	"context"
	"fmt"
	"strings"

	"rolescout/internal/domain"
)

// AdminStore is the ledger surface the reset operations need.
type AdminStore interface {
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.RoleRecord, error)
	ResetToNew(ctx context.Context, canonicalURL string) error
	SetStatusWhereFailure(ctx context.Context, reasons []string, status domain.Status) (int, error)
}

// NotFoundReasons is every failure code meaning "the posting is gone".
var NotFoundReasons = []string{
	"HTTP_404",
	"LEVER_404_PAGE",
	"ASHBY_404_PAGE",
	"GREENHOUSE_404_PAGE",
	"LINKEDIN_404_PAGE",
	"OTHER_404_PAGE",
}

// ResetBadEnriched moves Enriched records whose stored content is
// clearly an error page back to New for a clean retry.
func ResetBadEnriched(ctx context.Context, store AdminStore) (int, error) {
	records, err := store.ListByStatus(ctx, domain.StatusEnriched)
	if err != nil {
		return 0, fmt.Errorf("reset bad-enriched list: %w", err)
	}

	reset := 0
	for _, rec := range records {
		if !badEnrichedContent(rec) {
			continue
		}
		if err := store.ResetToNew(ctx, rec.CanonicalURL); err != nil {
			return reset, fmt.Errorf("reset %s: %w", rec.CanonicalURL, err)
		}
		reset++
	}
	return reset, nil
}

func badEnrichedContent(rec domain.RoleRecord) bool {
	if strings.TrimSpace(rec.JDText) == "" {
		return true
	}
	if rec.HTTPStatus == 404 || rec.HTTPStatus == 0 {
		return true
	}
	lower := strings.ToLower(rec.JDText)
	if looksNotFound(lower) {
		return true
	}
	return strings.Contains(lower, "democorp")
}

// ResetShortText returns FetchError TEXT_TOO_SHORT records to New so
// the next pass retries them, typically after a parsing fix.
func ResetShortText(ctx context.Context, store AdminStore) (int, error) {
	records, err := store.ListByStatus(ctx, domain.StatusFetchError)
	if err != nil {
		return 0, fmt.Errorf("reset short-text list: %w", err)
	}

	reset := 0
	for _, rec := range records {
		if rec.FailureReason != "TEXT_TOO_SHORT" {
			continue
		}
		if err := store.ResetToNew(ctx, rec.CanonicalURL); err != nil {
			return reset, fmt.Errorf("reset %s: %w", rec.CanonicalURL, err)
		}
		reset++
	}
	return reset, nil
}

// NormalizeDeadLinks sets status Dead on every record whose failure
// reason is a not-found code, so dead links are never retried.
func NormalizeDeadLinks(ctx context.Context, store AdminStore) (int, error) {
	n, err := store.SetStatusWhereFailure(ctx, NotFoundReasons, domain.StatusDead)
	if err != nil {
		return 0, fmt.Errorf("normalize dead links: %w", err)
	}
	return n, nil
}
