package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sjsage522/socialscraper/internal/record"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scraped_records (
	position   INTEGER NOT NULL,
	id         TEXT PRIMARY KEY,
	platform   TEXT NOT NULL,
	username   TEXT NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL,
	items      JSONB NOT NULL
)`

// PostgresPersister stores records in a Postgres table shared by replicas
// of the service. Saves rewrite the table inside one transaction.
type PostgresPersister struct {
	pool *pgxpool.Pool
}

// NewPostgresPersister connects to dsn and creates the table if needed
func NewPostgresPersister(ctx context.Context, dsn string, maxConns int) (*PostgresPersister, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 2
	}
	cfg.MaxConns = int32(maxConns)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &PostgresPersister{pool: pool}, nil
}

// Load reads every record in position order
func (p *PostgresPersister) Load(ctx context.Context) ([]record.ScrapedRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, platform, username, scraped_at, items FROM scraped_records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []record.ScrapedRecord{}
	for rows.Next() {
		var (
			r        record.ScrapedRecord
			platform string
			items    []byte
		)
		if err := rows.Scan(&r.ID, &platform, &r.Username, &r.ScrapedAt, &items); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Platform = record.Platform(platform)
		r.ScrapedAt = r.ScrapedAt.UTC()
		if err := json.Unmarshal(items, &r.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces the table contents with records
func (p *PostgresPersister) Save(ctx context.Context, records []record.ScrapedRecord) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM scraped_records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	b := &pgx.Batch{}
	for i, r := range records {
		items, err := json.Marshal(r.Items)
		if err != nil {
			return fmt.Errorf("failed to encode items of %s: %w", r.ID, err)
		}
		b.Queue(
			`INSERT INTO scraped_records (position, id, platform, username, scraped_at, items)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			i, r.ID, string(r.Platform), r.Username, r.ScrapedAt.UTC(), string(items),
		)
	}

	br := tx.SendBatch(ctx, b)
	for range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert records: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (p *PostgresPersister) Close() error {
	p.pool.Close()
	return nil
}
