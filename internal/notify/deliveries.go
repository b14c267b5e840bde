package notify

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DeliveryLog records webhook outcomes in a SQLite database.
type DeliveryLog struct {
	db *sql.DB
}

// OpenDeliveryLog opens (or creates) the delivery database at dir/deliveries.db.
func OpenDeliveryLog(dir string) (*DeliveryLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating deliveries dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "deliveries.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening deliveries db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS deliveries (
		id          TEXT PRIMARY KEY,
		record_id   TEXT NOT NULL,
		url         TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		ok          INTEGER NOT NULL,
		error       TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		sent_at     INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating deliveries table: %w", err)
	}

	return &DeliveryLog{db: db}, nil
}

// Record stores one outcome. Recording the same delivery ID twice keeps the last.
func (l *DeliveryLog) Record(ctx context.Context, o Outcome) error {
	ok := 0
	if o.OK {
		ok = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO deliveries (id, record_id, url, status_code, ok, error, duration_ms, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.DeliveryID.String(), o.RecordID.String(), o.URL, o.StatusCode, ok, o.Error,
		o.Duration.Milliseconds(), o.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}
	return nil
}

// Recent returns up to limit outcomes, newest first.
func (l *DeliveryLog) Recent(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, record_id, url, status_code, ok, error, duration_ms, sent_at
		 FROM deliveries ORDER BY sent_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying deliveries: %w", err)
	}
	defer rows.Close()

	out := []Outcome{}
	for rows.Next() {
		var (
			o                Outcome
			id, recordID     string
			ok               int
			durationMS, sent int64
		)
		if err := rows.Scan(&id, &recordID, &o.URL, &o.StatusCode, &ok, &o.Error, &durationMS, &sent); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		if o.DeliveryID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing delivery id: %w", err)
		}
		if o.RecordID, err = uuid.Parse(recordID); err != nil {
			return nil, fmt.Errorf("parsing record id: %w", err)
		}
		o.OK = ok == 1
		o.At = time.Unix(0, sent).UTC()
		o.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, o)
	}
	return out, rows.Err()
}

// Close closes the delivery database.
func (l *DeliveryLog) Close() error {
	return l.db.Close()
}
