package agent

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Journal keeps the node's cumulative traffic counter in a local SQLite
// file so the running total survives agent restarts. The server treats
// each report as authoritative for the full total since the last reset,
// so losing this counter would silently shrink the node's accounting.
type Journal struct {
	db *sql.DB
}

const counterKey = "traffic_total"

// OpenJournal opens (and if needed creates) the journal at path.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS counters(key TEXT PRIMARY KEY, value REAL NOT NULL, updated_ts INTEGER NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Traffic returns the persisted cumulative total.
func (j *Journal) Traffic() (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var v float64
	err := j.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE key = ?`, counterKey).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

// AddTraffic adds a sampled delta to the counter and returns the new
// total.
func (j *Journal) AddTraffic(delta float64) (float64, error) {
	total, err := j.Traffic()
	if err != nil {
		return 0, err
	}
	total += delta
	return total, j.SetTraffic(total)
}

// SetTraffic overwrites the counter; used when the server signals a
// rollover and the agent rebaselines.
func (j *Journal) SetTraffic(v float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO counters(key, value, updated_ts) VALUES(?,?,?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_ts=excluded.updated_ts`,
		counterKey, v, time.Now().Unix())
	return err
}
