package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/logger"
)

// RedisPublisher implements Publisher on a capped Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
	log             *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
		log:             logger.ForPublisher(),
	}
}

// Ping checks that redis is reachable
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish appends one entry per record to the stream, trimming it to
// roughly streamMaxLength entries
func (p *RedisPublisher) Publish(ctx context.Context, rec record.ScrapedRecord) error {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items of %s: %w", rec.ID, err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.streamMaxLength,
		Approx: true,
		Values: map[string]interface{}{
			"record_id":  rec.ID,
			"platform":   string(rec.Platform),
			"username":   rec.Username,
			"scraped_at": rec.ScrapedAt.UTC().Format(time.RFC3339Nano),
			"items":      string(items),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", rec.ID, p.stream, err)
	}

	p.log.Debug().
		Str("stream", p.stream).
		Str("entry_id", id).
		Str("record_id", rec.ID).
		Msg("Published record")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
