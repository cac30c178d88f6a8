package provider

import (
	"context"
	"strings"

	"sjsage522/socialscraper/internal/record"
)

// JobStatus is the classified state of a provider job
type JobStatus int

const (
	StatusPending JobStatus = iota
	StatusReady
	StatusFailed
)

func (s JobStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Classify maps a provider status string onto a JobStatus. Anything that is
// not explicitly terminal is still pending.
func Classify(status string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ready", "done":
		return StatusReady
	case "failed":
		return StatusFailed
	default:
		return StatusPending
	}
}

// Provider is an asynchronous collection service: jobs are submitted, polled
// until they reach a terminal status, and then retrieved.
type Provider interface {
	// Submit starts a collection job for the subject and returns its id
	Submit(ctx context.Context, query string) (string, error)

	// PollOnce reports the current status of a job
	PollOnce(ctx context.Context, jobID string) (JobStatus, error)

	// Retrieve downloads the payload of a ready job
	Retrieve(ctx context.Context, jobID string) ([]record.RawItem, error)
}
