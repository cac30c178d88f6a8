package store

import (
	"context"
	"sync"

	"sjsage522/socialscraper/internal/record"
)

// MemoryPersister keeps the collection in process memory only
type MemoryPersister struct {
	mu      sync.Mutex
	records []record.ScrapedRecord
	saves   int
	failErr error
}

// NewMemoryPersister creates a persister seeded with records
func NewMemoryPersister(records ...record.ScrapedRecord) *MemoryPersister {
	return &MemoryPersister{records: record.CloneAll(records)}
}

// Load returns a copy of the held records
func (m *MemoryPersister) Load(ctx context.Context) ([]record.ScrapedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return record.CloneAll(m.records), nil
}

// Save replaces the held records
func (m *MemoryPersister) Save(ctx context.Context, records []record.ScrapedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.records = record.CloneAll(records)
	m.saves++
	return nil
}

// FailWith makes every subsequent Save return err; nil restores normal saves
func (m *MemoryPersister) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Saves returns the number of successful saves
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close is a no-op
func (m *MemoryPersister) Close() error { return nil }
