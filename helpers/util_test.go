package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	key := CacheKey("page", "https://www.youtube.com/watch?v=abc def")
	assert.True(t, strings.HasPrefix(key, "page:"))
	assert.NotContains(t, key, " ")
	assert.Equal(t, key, CacheKey("page", "https://www.youtube.com/watch?v=abc def"))
	assert.NotEqual(t, key, CacheKey("page", "https://www.youtube.com/watch?v=xyz"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "www.youtube.com", HostOf("https://WWW.YouTube.com/watch?v=1"))
	assert.Equal(t, "", HostOf("://bad"))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://youtu.be/abc"))
	assert.False(t, IsHTTPURL("youtu.be/abc"))
	assert.False(t, IsHTTPURL("ftp://example.com"))
	assert.False(t, IsHTTPURL(""))
}
