// Package store keeps the bounded, newest-first history of scrape results.
//
// The Store is the single writer: every mutation holds its mutex across the
// whole read-modify-write cycle, including the write-through to the
// Persister, so concurrent appends and removals cannot lose updates. The
// in-memory table is only replaced after the Persister accepted the new state.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/logger"
	apperrors "sjsage522/socialscraper/pkg/errors"
)

// DefaultCapacity is the maximum number of records kept
const DefaultCapacity = 100

// timestampPrecision is the finest ScrapedAt resolution every backend can
// round-trip (Postgres timestamptz holds microseconds)
const timestampPrecision = time.Microsecond

// Persister durably saves the full record collection
type Persister interface {
	// Load returns the persisted records, newest first
	Load(ctx context.Context) ([]record.ScrapedRecord, error)

	// Save replaces the persisted collection with records
	Save(ctx context.Context, records []record.ScrapedRecord) error

	// Close releases the underlying resources
	Close() error
}

// Store is a capacity-bounded record log
type Store struct {
	mu        sync.RWMutex
	records   []record.ScrapedRecord
	capacity  int
	persister Persister
	newID     func() string
	now       func() time.Time
	log       *logger.Logger
}

// Option customises a Store
type Option func(*Store)

// WithCapacity sets the maximum number of records
func WithCapacity(n int) Option { return func(s *Store) { s.capacity = n } }

// WithIDGenerator replaces the uuid generator
func WithIDGenerator(gen func() string) Option { return func(s *Store) { s.newID = gen } }

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithLogger replaces the component logger
func WithLogger(l *logger.Logger) Option { return func(s *Store) { s.log = l } }

// Open loads the persisted collection and returns a ready Store. A loaded
// collection larger than the capacity is truncated.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		capacity:  DefaultCapacity,
		persister: p,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.ForStore()
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		return nil, apperrors.NewStorage("failed to load records", err)
	}
	if len(loaded) > s.capacity {
		loaded = loaded[:s.capacity]
	}
	s.records = loaded

	s.log.Info().Int("records", len(loaded)).Int("capacity", s.capacity).Msg("Record store opened")
	return s, nil
}

// Append creates a record for items, inserts it at the head and evicts the
// oldest records beyond capacity.
func (s *Store) Append(ctx context.Context, platform record.Platform, username string, items []record.RawItem) (record.ScrapedRecord, error) {
	rec := record.ScrapedRecord{
		Platform:  platform,
		Username:  username,
		ScrapedAt: s.now().UTC().Truncate(timestampPrecision),
		Items:     items,
	}
	if rec.Items == nil {
		rec.Items = []record.RawItem{}
	}
	rec = rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.uniqueID()

	next := make([]record.ScrapedRecord, 0, min(len(s.records)+1, s.capacity))
	next = append(next, rec)
	next = append(next, s.records...)
	evicted := 0
	if len(next) > s.capacity {
		evicted = len(next) - s.capacity
		next = next[:s.capacity]
	}

	if err := s.commit(ctx, next); err != nil {
		return record.ScrapedRecord{}, err
	}

	s.log.Debug().
		Str("record_id", rec.ID).
		Str("platform", string(platform)).
		Int("items", len(rec.Items)).
		Int("evicted", evicted).
		Msg("Record appended")
	return rec.Clone(), nil
}

// List returns all records, optionally restricted to one platform, newest first
func (s *Store) List(platform record.Platform) []record.ScrapedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]record.ScrapedRecord, 0, len(s.records))
	for _, r := range s.records {
		if platform != "" && r.Platform != platform {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

// Get returns the record with id
func (s *Store) Get(id string) (record.ScrapedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.records[i].Clone(), nil
	}
	return record.ScrapedRecord{}, apperrors.NewNotFound(id)
}

// Remove deletes the record with id. It reports false, and leaves the store
// untouched, when no such record exists.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.records), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.log.Debug().Str("record_id", id).Msg("Record removed")
	return true, nil
}

// Clear removes every record
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, []record.ScrapedRecord{}); err != nil {
		return err
	}
	s.log.Info().Msg("Record store cleared")
	return nil
}

// Len returns the number of records held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Capacity returns the maximum number of records held
func (s *Store) Capacity() int {
	return s.capacity
}

// Close closes the persister
func (s *Store) Close() error {
	return s.persister.Close()
}

// commit persists next and then swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []record.ScrapedRecord) error {
	if err := s.persister.Save(ctx, next); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist records")
		return apperrors.NewStorage("failed to persist records", err)
	}
	s.records = next
	return nil
}

// indexOf returns the position of id or -1. Callers hold s.mu.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r record.ScrapedRecord) bool { return r.ID == id })
}

// uniqueID draws ids until one is unused. Callers hold s.mu.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}
