package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sjsage522/socialscraper/internal/record"
)

// RedisPersister stores each record as one JSON element of a redis list,
// head first. Saves rewrite the list inside a MULTI/EXEC transaction.
type RedisPersister struct {
	client *redis.Client
	key    string
}

// NewRedisPersister creates a persister on the list at key
func NewRedisPersister(addr string, db int, key string) *RedisPersister {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisPersister{client: client, key: key}
}

// Ping checks that redis is reachable
func (p *RedisPersister) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Load reads the whole list
func (p *RedisPersister) Load(ctx context.Context) ([]record.ScrapedRecord, error) {
	values, err := p.client.LRange(ctx, p.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.key, err)
	}

	records := make([]record.ScrapedRecord, 0, len(values))
	for i, v := range values {
		var r record.ScrapedRecord
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("failed to decode %s[%d]: %w", p.key, i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Save replaces the list with records
func (p *RedisPersister) Save(ctx context.Context, records []record.ScrapedRecord) error {
	values := make([]interface{}, 0, len(records))
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", r.ID, err)
		}
		values = append(values, data)
	}

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, p.key)
		if len(values) > 0 {
			pipe.RPush(ctx, p.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", p.key, err)
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPersister) Close() error {
	return p.client.Close()
}
