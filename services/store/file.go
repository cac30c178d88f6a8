package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sjsage522/socialscraper/internal/record"
)

// DefaultFileName is the JSON file written inside the data directory
const DefaultFileName = "scraped_data.json"

// FilePersister stores the collection as one pretty-printed JSON array.
// Saves write a temporary file and rename it over the target.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing to dataDir/scraped_data.json
func NewFilePersister(dataDir string) (*FilePersister, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &FilePersister{path: filepath.Join(dataDir, DefaultFileName)}, nil
}

// Path returns the file being written
func (f *FilePersister) Path() string {
	return f.path
}

// Load reads the collection; a missing file is an empty collection
func (f *FilePersister) Load(ctx context.Context) ([]record.ScrapedRecord, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []record.ScrapedRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return []record.ScrapedRecord{}, nil
	}

	var records []record.ScrapedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	if records == nil {
		records = []record.ScrapedRecord{}
	}
	return records, nil
}

// Save atomically replaces the file contents with records
func (f *FilePersister) Save(ctx context.Context, records []record.ScrapedRecord) error {
	if records == nil {
		records = []record.ScrapedRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".scraped_data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op
func (f *FilePersister) Close() error { return nil }
