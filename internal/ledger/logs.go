package ledger

import (
	"context"
	"fmt"
	"time"
)

// AppendLog records one pipeline log line in the ledger's log sink.
// Log failures never abort a stage; callers ignore the error after
// printing it.
func (l *Ledger) AppendLog(ctx context.Context, stage, message string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO logs(ts, stage, message) VALUES(?,?,?);`,
		time.Now().UTC().Format(time.RFC3339), stage, message)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// LogLine is one entry from the log sink.
type LogLine struct {
	TS      time.Time
	Stage   string
	Message string
}

// RecentLogs returns the newest n log lines, newest first.
func (l *Ledger) RecentLogs(ctx context.Context, n int) ([]LogLine, error) {
	if n <= 0 {
		n = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT ts, stage, message FROM logs ORDER BY id DESC LIMIT ?;`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogLine
	for rows.Next() {
		var ts string
		var line LogLine
		if err := rows.Scan(&ts, &line.Stage, &line.Message); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			line.TS = t
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
