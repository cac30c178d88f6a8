package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sjsage522/socialscraper/internal/record"
)

// DefaultDBName is the database file created inside the data directory
const DefaultDBName = "scraped_data.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scraped_records (
	position   INTEGER NOT NULL,
	id         TEXT PRIMARY KEY,
	platform   TEXT NOT NULL,
	username   TEXT NOT NULL,
	scraped_at TEXT NOT NULL,
	items      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scraped_records_position ON scraped_records(position);
`

// SQLitePersister stores records in an embedded SQLite database. Saves
// rewrite the table inside one transaction.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (and creates) dataDir/scraped_data.db
func NewSQLitePersister(dataDir string) (*SQLitePersister, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return OpenSQLitePersister(filepath.Join(dataDir, DefaultDBName))
}

// OpenSQLitePersister opens the database at path
func OpenSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

// Load reads every record in position order
func (p *SQLitePersister) Load(ctx context.Context) ([]record.ScrapedRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, platform, username, scraped_at, items FROM scraped_records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []record.ScrapedRecord{}
	for rows.Next() {
		var (
			r         record.ScrapedRecord
			platform  string
			scrapedAt string
			items     string
		)
		if err := rows.Scan(&r.ID, &platform, &r.Username, &scrapedAt, &items); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Platform = record.Platform(platform)
		if r.ScrapedAt, err = time.Parse(time.RFC3339Nano, scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to parse scraped_at of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces the table contents with records
func (p *SQLitePersister) Save(ctx context.Context, records []record.ScrapedRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scraped_records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scraped_records (position, id, platform, username, scraped_at, items) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		items, err := json.Marshal(r.Items)
		if err != nil {
			return fmt.Errorf("failed to encode items of %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, r.ID, string(r.Platform), r.Username,
			r.ScrapedAt.UTC().Format(time.RFC3339Nano), string(items)); err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// Close closes the database
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
