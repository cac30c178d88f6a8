// Package normalize maps provider-specific item shapes onto one logical schema.
//
// The alias table is the only place that knows provider field names. For
// every logical field the aliases are consulted in order and the first one
// holding a usable value wins.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"sjsage522/socialscraper/internal/record"
)

// Field names a logical attribute of a normalized item
type Field string

const (
	FieldCaption  Field = "caption"
	FieldViews    Field = "views"
	FieldLikes    Field = "likes"
	FieldComments Field = "comments"
	FieldShares   Field = "shares"
	FieldURL      Field = "url"
)

// Aliases is the priority-ordered list of source keys per logical field
var Aliases = map[Field][]string{
	FieldCaption:  {"title", "desc", "description", "text"},
	FieldViews:    {"playcount", "play_count", "views"},
	FieldLikes:    {"diggcount", "digg_count", "likes"},
	FieldComments: {"commentcount", "comment_count", "comments"},
	FieldShares:   {"sharecount", "share_count", "shares"},
	FieldURL:      {"video_url", "url"},
}

// Item is a fully defaulted, typed view of a RawItem
type Item struct {
	Caption  string
	Views    int64
	Likes    int64
	Comments int64
	Shares   int64
	URL      string
}

// Normalize resolves every logical field of raw. Missing text fields are
// empty and missing counts are zero.
func Normalize(raw record.RawItem) Item {
	return Item{
		Caption:  Text(raw, FieldCaption),
		Views:    Count(raw, FieldViews),
		Likes:    Count(raw, FieldLikes),
		Comments: Count(raw, FieldComments),
		Shares:   Count(raw, FieldShares),
		URL:      Text(raw, FieldURL),
	}
}

// Text resolves a text field. Empty strings are treated as absent.
func Text(raw record.RawItem, field Field) string {
	for _, key := range Aliases[field] {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		s, ok := toText(v)
		if ok && s != "" {
			return s
		}
	}
	return ""
}

// Count resolves a numeric field. Values that cannot be read as a number
// are skipped in favour of the next alias.
func Count(raw record.RawItem, field Field) int64 {
	for _, key := range Aliases[field] {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if n, ok := toCount(v); ok {
			return n
		}
	}
	return 0
}

func toText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64, float32, int, int32, int64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

func toCount(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case float32:
		return int64(t), true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case string:
		return parseCount(t)
	default:
		return 0, false
	}
}

// parseCount reads counts such as "1234", "1,234" or "12.0"
func parseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(f), true
	}
	return 0, false
}
