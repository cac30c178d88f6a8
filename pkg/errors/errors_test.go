package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorWrapping(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := NewProviderUnavailable("tiktok", "failed to trigger collection", cause)

	wrapped := fmt.Errorf("fetch tiktok: %w", err)
	assert.True(t, Is(wrapped, ErrorTypeProviderUnavailable))
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, err.Error(), "provider_unavailable")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "failed to trigger collection", PublicMessage(wrapped))
}

func TestCollectionTimeoutCarriesJobID(t *testing.T) {
	err := NewCollectionTimeout("tiktok", "s_123", 20)

	assert.Equal(t, "s_123", JobIDOf(err))
	assert.Equal(t, ErrorTypeCollectionTimeout, TypeOf(err))
	assert.Contains(t, err.Error(), "20 polls")
}

func TestTypeOfPlainError(t *testing.T) {
	err := stderrors.New("boom")
	assert.Equal(t, ErrorType(""), TypeOf(err))
	assert.Empty(t, JobIDOf(err))
	assert.Equal(t, "internal error", PublicMessage(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorType]int{
		ErrorTypeValidation:          http.StatusBadRequest,
		ErrorTypeNotFound:            http.StatusNotFound,
		ErrorTypeCollectionTimeout:   http.StatusRequestTimeout,
		ErrorTypeCollectionCanceled:  http.StatusRequestTimeout,
		ErrorTypeRateLimit:           http.StatusTooManyRequests,
		ErrorTypeProviderUnavailable: http.StatusInternalServerError,
		ErrorTypeCollectionFailed:    http.StatusInternalServerError,
		ErrorTypeScrapeFailed:        http.StatusInternalServerError,
		ErrorTypeStorage:             http.StatusInternalServerError,
	}
	for errType, status := range cases {
		assert.Equal(t, status, HTTPStatus(errType), string(errType))
	}
}
