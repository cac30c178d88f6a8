package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform(" TikTok ")
	require.NoError(t, err)
	assert.Equal(t, PlatformTikTok, p)

	_, err = ParsePlatform("myspace")
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	orig := ScrapedRecord{
		ID:       "r1",
		Platform: PlatformYouTube,
		Items:    []RawItem{{"title": "a"}},
	}

	clone := orig.Clone()
	clone.Items[0]["title"] = "b"
	clone.Items = append(clone.Items, RawItem{"title": "c"})

	assert.Equal(t, "a", orig.Items[0]["title"])
	assert.Len(t, orig.Items, 1)
}

func TestCloneCopiesNestedValues(t *testing.T) {
	orig := ScrapedRecord{
		Items: []RawItem{{
			"author":   map[string]any{"name": "original"},
			"hashtags": []any{"go", map[string]any{"tag": "fyp"}},
			"music":    RawItem{"title": "song"},
			"mentions": []string{"a"},
		}},
	}

	clone := orig.Clone()
	clone.Items[0]["author"].(map[string]any)["name"] = "changed"
	clone.Items[0]["hashtags"].([]any)[0] = "rust"
	clone.Items[0]["hashtags"].([]any)[1].(map[string]any)["tag"] = "changed"
	clone.Items[0]["music"].(RawItem)["title"] = "changed"
	clone.Items[0]["mentions"].([]string)[0] = "b"

	item := orig.Items[0]
	assert.Equal(t, "original", item["author"].(map[string]any)["name"])
	assert.Equal(t, "go", item["hashtags"].([]any)[0])
	assert.Equal(t, "fyp", item["hashtags"].([]any)[1].(map[string]any)["tag"])
	assert.Equal(t, "song", item["music"].(RawItem)["title"])
	assert.Equal(t, []string{"a"}, item["mentions"])
}
