package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation represents missing or malformed input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeProviderUnavailable represents a rejected job submission
	ErrorTypeProviderUnavailable ErrorType = "provider_unavailable"
	// ErrorTypeCollectionFailed represents a job the provider marked as failed
	ErrorTypeCollectionFailed ErrorType = "collection_failed"
	// ErrorTypeCollectionTimeout represents an exhausted poll ceiling
	ErrorTypeCollectionTimeout ErrorType = "collection_timeout"
	// ErrorTypeCollectionCanceled represents polling abandoned by the caller
	ErrorTypeCollectionCanceled ErrorType = "collection_canceled"
	// ErrorTypeScrapeFailed represents a direct page fetch that failed
	ErrorTypeScrapeFailed ErrorType = "scrape_failed"
	// ErrorTypeNotFound represents an unknown record id
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeStorage represents a persistence failure
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeRateLimit represents a rate-limited upstream or client
	ErrorTypeRateLimit ErrorType = "rate_limit"
)

// ScrapeError is the error returned by every core component. Message is safe
// to show to API clients; Err may carry provider detail and is only logged.
type ScrapeError struct {
	Type     ErrorType
	Platform string
	Message  string
	JobID    string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Platform != "" {
		prefix += " " + e.Platform + ":"
	}
	if e.JobID != "" {
		prefix += " job " + e.JobID + ":"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s - %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, platform, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:     errType,
		Platform: platform,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewValidation creates a new validation error
func NewValidation(message string) *ScrapeError {
	return New(ErrorTypeValidation, "", message, nil)
}

// NewProviderUnavailable creates a new provider submission error
func NewProviderUnavailable(platform, message string, err error) *ScrapeError {
	return New(ErrorTypeProviderUnavailable, platform, message, err)
}

// NewCollectionFailed creates an error for a job reported failed by the provider
func NewCollectionFailed(platform, jobID string, err error) *ScrapeError {
	e := New(ErrorTypeCollectionFailed, platform, "collection failed", err)
	e.JobID = jobID
	return e
}

// NewCollectionTimeout creates an error for a job that never reached a terminal status
func NewCollectionTimeout(platform, jobID string, attempts int) *ScrapeError {
	e := New(ErrorTypeCollectionTimeout, platform, "timeout waiting for data", nil)
	e.JobID = jobID
	e.Err = fmt.Errorf("no terminal status after %d polls", attempts)
	return e
}

// NewCollectionCanceled creates an error for polling abandoned by the caller
func NewCollectionCanceled(platform, jobID string, err error) *ScrapeError {
	e := New(ErrorTypeCollectionCanceled, platform, "collection canceled", err)
	e.JobID = jobID
	return e
}

// NewScrapeFailed creates a new direct-fetch error
func NewScrapeFailed(platform, message string, err error) *ScrapeError {
	return New(ErrorTypeScrapeFailed, platform, message, err)
}

// NewNotFound creates a new not-found error
func NewNotFound(id string) *ScrapeError {
	return New(ErrorTypeNotFound, "", "record not found", fmt.Errorf("id %q", id))
}

// NewStorage creates a new storage error
func NewStorage(message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, "", message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(platform string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, platform, message, nil)
}

// As returns the ScrapeError in err's chain, if any
func As(err error) (*ScrapeError, bool) {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// TypeOf returns the ErrorType of err, or "" when err is not a ScrapeError
func TypeOf(err error) ErrorType {
	if se, ok := As(err); ok {
		return se.Type
	}
	return ""
}

// Is reports whether err is a ScrapeError of the given type
func Is(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// JobIDOf returns the job id carried by err, if any
func JobIDOf(err error) string {
	if se, ok := As(err); ok {
		return se.JobID
	}
	return ""
}

// HTTPStatus maps an error type to the status code returned to API clients
func HTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeCollectionTimeout, ErrorTypeCollectionCanceled:
		return http.StatusRequestTimeout
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err
func PublicMessage(err error) string {
	if se, ok := As(err); ok {
		return se.Message
	}
	return "internal error"
}
