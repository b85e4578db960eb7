// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a SQLite history of crawl cycles and delivered
// digests. The accumulation store is emptied on every drain; the archive
// is what survives.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Archive manages the history database.
type Archive struct {
	db *sql.DB
}

// Cycle is the record of one crawl cycle.
type Cycle struct {
	ID          string           `json:"id" yaml:"id"`
	StartedAt   time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time        `json:"finished_at" yaml:"finished_at"`
	RunCount    int              `json:"run_count" yaml:"run_count"`
	Heavy       bool             `json:"heavy" yaml:"heavy"`
	Items       int              `json:"items" yaml:"items"`
	StoreBefore int              `json:"store_before" yaml:"store_before"`
	StoreAfter  int              `json:"store_after" yaml:"store_after"`
	Reports     []acquire.Report `json:"reports" yaml:"reports"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Digest is the record of one delivered digest.
type Digest struct {
	ID        string              `json:"id" yaml:"id"`
	CreatedAt time.Time           `json:"created_at" yaml:"created_at"`
	Channel   string              `json:"channel" yaml:"channel"`
	Posts     int                 `json:"posts" yaml:"posts"`
	Entries   []types.DigestEntry `json:"entries" yaml:"entries"`
}

// Open opens or creates the archive database at path and its schema.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a := &Archive{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return a, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			run_count INTEGER NOT NULL,
			heavy INTEGER NOT NULL,
			items INTEGER NOT NULL,
			store_before INTEGER NOT NULL,
			store_after INTEGER NOT NULL,
			reports TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started_at ON cycles(started_at)`,
		`CREATE TABLE IF NOT EXISTS digests (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			channel TEXT NOT NULL,
			posts INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			snapshot TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_digests_created_at ON digests(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordCycle stores c and returns its id, generating one when c.ID is
// empty.
func (a *Archive) RecordCycle(ctx context.Context, c Cycle) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	reports, err := json.Marshal(c.Reports)
	if err != nil {
		return "", fmt.Errorf("encoding reports: %w", err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO cycles (id, started_at, finished_at, run_count, heavy, items, store_before, store_after, reports, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, formatTime(c.StartedAt), formatTime(c.FinishedAt), c.RunCount, c.Heavy,
		c.Items, c.StoreBefore, c.StoreAfter, string(reports), c.Error,
	)
	if err != nil {
		return "", fmt.Errorf("inserting cycle: %w", err)
	}
	return c.ID, nil
}

// RecentCycles returns up to n cycles, newest first.
func (a *Archive) RecentCycles(ctx context.Context, n int) ([]Cycle, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, run_count, heavy, items, store_before, store_after, reports, COALESCE(error, '')
		 FROM cycles ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying cycles: %w", err)
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var c Cycle
		var started, finished, reports string
		if err := rows.Scan(&c.ID, &started, &finished, &c.RunCount, &c.Heavy, &c.Items,
			&c.StoreBefore, &c.StoreAfter, &reports, &c.Error); err != nil {
			return nil, fmt.Errorf("scanning cycle: %w", err)
		}
		c.StartedAt = parseTime(started)
		c.FinishedAt = parseTime(finished)
		if err := json.Unmarshal([]byte(reports), &c.Reports); err != nil {
			return nil, fmt.Errorf("decoding reports of cycle %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordDigest stores a delivered digest with a YAML snapshot of its
// entries and returns its id.
func (a *Archive) RecordDigest(ctx context.Context, d Digest) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	snapshot, err := yaml.Marshal(d.Entries)
	if err != nil {
		return "", fmt.Errorf("encoding digest snapshot: %w", err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO digests (id, created_at, channel, posts, entries, snapshot) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, formatTime(d.CreatedAt), d.Channel, d.Posts, len(d.Entries), string(snapshot),
	)
	if err != nil {
		return "", fmt.Errorf("inserting digest: %w", err)
	}
	return d.ID, nil
}

// RecentDigests returns up to n digests, newest first.
func (a *Archive) RecentDigests(ctx context.Context, n int) ([]Digest, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, created_at, channel, posts, snapshot FROM digests ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying digests: %w", err)
	}
	defer rows.Close()

	var out []Digest
	for rows.Next() {
		var d Digest
		var created, snapshot string
		if err := rows.Scan(&d.ID, &created, &d.Channel, &d.Posts, &snapshot); err != nil {
			return nil, fmt.Errorf("scanning digest: %w", err)
		}
		d.CreatedAt = parseTime(created)
		if err := yaml.Unmarshal([]byte(snapshot), &d.Entries); err != nil {
			return nil, fmt.Errorf("decoding digest %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// timeLayout is fixed width so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
