// Package record holds the persisted data model shared by the collectors,
// the record store and the exporter.
package record

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Platform identifies the social network a record was scraped from
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// Platforms lists every supported platform
var Platforms = []Platform{PlatformTikTok, PlatformYouTube, PlatformInstagram}

// ParsePlatform converts a case-insensitive name into a Platform
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// RawItem is an unnormalized result item; field names vary by source
type RawItem map[string]any

// ScrapedRecord is the result of one completed fetch. Records are never
// modified after creation.
type ScrapedRecord struct {
	ID        string    `json:"id"`
	Platform  Platform  `json:"platform"`
	Username  string    `json:"username"`
	ScrapedAt time.Time `json:"scrapedAt"`
	Items     []RawItem `json:"data"`
}

// Clone returns a copy that shares no mutable state with r. Maps and slices
// nested inside items are copied recursively.
func (r ScrapedRecord) Clone() ScrapedRecord {
	out := r
	if r.Items != nil {
		out.Items = make([]RawItem, len(r.Items))
		for i, item := range r.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the item
func (it RawItem) Clone() RawItem {
	if it == nil {
		return nil
	}
	return RawItem(cloneMap(it))
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the container types a decoded JSON payload can hold.
// Scalars are immutable and returned as is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case RawItem:
		return t.Clone()
	case map[string]any:
		return cloneMap(t)
	case []RawItem:
		if t == nil {
			return t
		}
		out := make([]RawItem, len(t))
		for i, item := range t {
			out[i] = item.Clone()
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}

// CloneAll clones every record in records
func CloneAll(records []ScrapedRecord) []ScrapedRecord {
	out := make([]ScrapedRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
