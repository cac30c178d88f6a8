package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/socialscraper/helpers"
	"sjsage522/socialscraper/internal/normalize"
	"sjsage522/socialscraper/internal/record"
	apperrors "sjsage522/socialscraper/pkg/errors"
)

const videoPage = `<!DOCTYPE html>
<html>
<head>
    <title>Fallback title - YouTube</title>
    <meta property="og:title" content="Never Gonna Give You Up">
    <meta property="og:description" content="The official video">
    <meta property="og:image" content="https://i.ytimg.com/vi/abc/hq.jpg">
    <meta itemprop="interactionCount" content="1234567">
</head>
<body></body>
</html>`

const barePage = `<html><head><title> Only a title </title></head><body></body></html>`

func TestMetaCrawlerFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, helpers.BrowserUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(videoPage))
	}))
	defer server.Close()

	c := NewMetaCrawler(record.PlatformYouTube, nil, 0, 0)
	item, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", item["title"])
	assert.Equal(t, "The official video", item["description"])
	assert.Equal(t, "https://i.ytimg.com/vi/abc/hq.jpg", item["image"])
	assert.Equal(t, "1234567", item["views"])
	assert.Equal(t, server.URL, item["url"])

	n := normalize.Normalize(item)
	assert.Equal(t, int64(1234567), n.Views)
	assert.Equal(t, "Never Gonna Give You Up", n.Caption)
}

func TestMetaCrawlerMissingFieldsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(barePage))
	}))
	defer server.Close()

	c := NewMetaCrawler(record.PlatformYouTube, nil, 0, 0)
	item, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Only a title", item["title"])
	assert.Equal(t, "0", item["views"])
	assert.NotContains(t, item, "description")
	assert.NotContains(t, item, "image")
}

func TestMetaCrawlerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewMetaCrawler(record.PlatformYouTube, nil, 0, 0)
	_, err := c.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeScrapeFailed))
	assert.Equal(t, "failed to scrape youtube", apperrors.PublicMessage(err))
}

func TestMetaCrawlerCachesItems(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(videoPage))
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	c := NewMetaCrawler(record.PlatformYouTube, mockCache, time.Minute, time.Minute)

	first, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	second, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestMetaCrawlerBlocksRateLimitedHost(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	c := NewMetaCrawler(record.PlatformYouTube, mockCache, time.Minute, time.Minute)

	_, err := c.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, mockCache.Has(blockKey(server.URL)))

	_, err = c.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBlocked)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetName(t *testing.T) {
	c := NewMetaCrawler(record.PlatformYouTube, nil, 0, 0)
	assert.Equal(t, "youtube-meta", c.GetName())
	assert.Equal(t, record.PlatformYouTube, c.GetPlatform())
}
