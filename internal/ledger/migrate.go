package ledger

import (
	"database/sql"
	"fmt"
)

// Migrate brings the schema up to date. Evolution is strictly additive:
// new columns are appended via ALTER TABLE, existing rows are never
// rewritten wholesale.
func (l *Ledger) Migrate() error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	// ---- v1: discovery columns + log sink ----
	if v < 1 {
		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS roles (
  canonical_url TEXT PRIMARY KEY,
  company TEXT NOT NULL DEFAULT '',
  job_title TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL,
  ats TEXT NOT NULL DEFAULT 'unknown',
  discovered_date TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'New',
  query TEXT NOT NULL DEFAULT ''
);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  stage TEXT NOT NULL,
  message TEXT NOT NULL
);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_roles_status ON roles(status);
`); err != nil {
			return err
		}
	}

	// ---- v2: enrichment columns ----
	if v < 2 {
		cols := []string{
			`jd_text TEXT NOT NULL DEFAULT ''`,
			`location_raw TEXT NOT NULL DEFAULT ''`,
			`work_mode_hint TEXT NOT NULL DEFAULT ''`,
			`http_status INTEGER NOT NULL DEFAULT 0`,
			`failure_reason TEXT NOT NULL DEFAULT ''`,
			`fetched_at TEXT NOT NULL DEFAULT ''`,
			`enriched_at TEXT NOT NULL DEFAULT ''`,
		}
		if err := addColumns(tx, "roles", cols); err != nil {
			return err
		}
	}

	// ---- v3: scoring columns ----
	if v < 3 {
		cols := []string{
			`fit_score INTEGER NOT NULL DEFAULT 0`,
			`fit_notes TEXT NOT NULL DEFAULT ''`,
			`dealbreaker_flag TEXT NOT NULL DEFAULT ''`,
			`location_us_ok TEXT NOT NULL DEFAULT ''`,
			`comp_ok TEXT NOT NULL DEFAULT ''`,
			`work_mode_final TEXT NOT NULL DEFAULT ''`,
			`rank_key TEXT NOT NULL DEFAULT ''`,
		}
		if err := addColumns(tx, "roles", cols); err != nil {
			return err
		}
		if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_roles_rank_key ON roles(rank_key DESC);
`); err != nil {
			return err
		}
	}

	if v < 3 {
		if _, err := tx.Exec(`PRAGMA user_version = 3;`); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func addColumns(tx *sql.Tx, table string, defs []string) error {
	for _, def := range defs {
		name := def
		for i := 0; i < len(def); i++ {
			if def[i] == ' ' {
				name = def[:i]
				break
			}
		}
		if columnExists(tx, table, name) {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s;`, table, def)); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, name, err)
		}
	}
	return nil
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}
