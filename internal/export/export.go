// Package export serializes stored records as JSON or CSV files.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"sjsage522/socialscraper/internal/normalize"
	"sjsage522/socialscraper/internal/record"
)

// CSVHeader is the fixed first row of every CSV export
var CSVHeader = []string{"id", "platform", "username", "scrapedAt", "title", "views", "likes", "comments", "shares", "url"}

// ToJSON returns the records as a pretty-printed JSON array
func ToJSON(records []record.ScrapedRecord) ([]byte, error) {
	if records == nil {
		records = []record.ScrapedRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return data, nil
}

// ToCSV returns one row per item across all records, after the header row.
// Item fields are resolved through the normalizer.
func ToCSV(records []record.ScrapedRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		scrapedAt := r.ScrapedAt.UTC().Format(time.RFC3339Nano)
		for _, raw := range r.Items {
			item := normalize.Normalize(raw)
			row := []string{
				r.ID,
				string(r.Platform),
				r.Username,
				scrapedAt,
				item.Caption,
				strconv.FormatInt(item.Views, 10),
				strconv.FormatInt(item.Likes, 10),
				strconv.FormatInt(item.Comments, 10),
				strconv.FormatInt(item.Shares, 10),
				item.URL,
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write csv row for %s: %w", r.ID, err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName returns the download name for an export in format ("json" or "csv")
func FileName(format string, now time.Time) string {
	return fmt.Sprintf("scraped_data_%s.%s", now.UTC().Format("20060102T150405Z"), format)
}
