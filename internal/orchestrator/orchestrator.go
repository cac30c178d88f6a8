// Package orchestrator drives the submit, poll, retrieve protocol against an
// asynchronous collection provider.
//
// Polling uses a constant interval and a hard attempt ceiling; there is no
// backoff. Every poll response is classified as pending, ready or failed, and
// transient poll errors count as pending.
package orchestrator

import (
	"context"
	"time"

	"sjsage522/socialscraper/internal/provider"
	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/logger"
	apperrors "sjsage522/socialscraper/pkg/errors"
)

const (
	// DefaultInterval is the wait before every poll
	DefaultInterval = 3 * time.Second
	// DefaultMaxAttempts bounds the number of polls per job
	DefaultMaxAttempts = 20
)

// Clock abstracts waiting so tests can run without real delays
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// job tracks one collection run. It lives only for the duration of
// RunToCompletion.
type job struct {
	ID           string
	Status       provider.JobStatus
	AttemptsMade int
}

// Orchestrator coordinates collection jobs against a single provider
type Orchestrator struct {
	provider    provider.Provider
	platform    record.Platform
	interval    time.Duration
	maxAttempts int
	clock       Clock
	log         *logger.Logger
}

// Option customises an Orchestrator
type Option func(*Orchestrator)

// WithInterval sets the wait between polls
func WithInterval(d time.Duration) Option { return func(o *Orchestrator) { o.interval = d } }

// WithMaxAttempts sets the poll ceiling
func WithMaxAttempts(n int) Option { return func(o *Orchestrator) { o.maxAttempts = n } }

// WithClock replaces the wall clock
func WithClock(c Clock) Option { return func(o *Orchestrator) { o.clock = c } }

// WithLogger replaces the component logger
func WithLogger(l *logger.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(p provider.Provider, platform record.Platform, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:    p,
		platform:    platform,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		clock:       realClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.ForOrchestrator()
	}
	return o
}

// Trigger submits a collection job for query and returns its id
func (o *Orchestrator) Trigger(ctx context.Context, query string) (string, error) {
	jobID, err := o.provider.Submit(ctx, query)
	if err != nil {
		o.log.Error().Err(err).Str("platform", string(o.platform)).Str("query", query).Msg("Trigger failed")
		return "", apperrors.NewProviderUnavailable(string(o.platform), "failed to trigger collection", err)
	}
	if jobID == "" {
		return "", apperrors.NewProviderUnavailable(string(o.platform), "failed to trigger collection", provider.ErrNoJobID)
	}

	o.log.Info().Str("platform", string(o.platform)).Str("query", query).Str("job_id", jobID).Msg("Collection triggered")
	return jobID, nil
}

// RunToCompletion polls jobID until it is ready, failed, the attempt ceiling
// is reached, or ctx is done. A ready job's payload is returned.
func (o *Orchestrator) RunToCompletion(ctx context.Context, jobID string) ([]record.RawItem, error) {
	j := &job{ID: jobID, Status: provider.StatusPending}
	log := o.log.WithField("job_id", jobID)

	canceled := func() error {
		log.Warn().Int("attempts", j.AttemptsMade).Msg("Collection canceled")
		return apperrors.NewCollectionCanceled(string(o.platform), jobID, ctx.Err())
	}

	for j.AttemptsMade < o.maxAttempts {
		if ctx.Err() != nil {
			return nil, canceled()
		}
		select {
		case <-ctx.Done():
			return nil, canceled()
		case <-o.clock.After(o.interval):
		}

		j.AttemptsMade++
		j.Status = o.poll(ctx, j, log)

		switch j.Status {
		case provider.StatusReady:
			items, err := o.provider.Retrieve(ctx, jobID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, canceled()
				}
				log.Error().Err(err).Msg("Retrieve failed")
				return nil, apperrors.NewCollectionFailed(string(o.platform), jobID, err)
			}
			log.Info().Int("attempts", j.AttemptsMade).Int("items", len(items)).Msg("Collection ready")
			return items, nil
		case provider.StatusFailed:
			log.Error().Int("attempts", j.AttemptsMade).Msg("Provider reported collection failure")
			return nil, apperrors.NewCollectionFailed(string(o.platform), jobID, nil)
		case provider.StatusPending:
		}
	}

	log.Warn().Int("attempts", j.AttemptsMade).Msg("Collection timed out")
	return nil, apperrors.NewCollectionTimeout(string(o.platform), jobID, j.AttemptsMade)
}

// Collect triggers a job for query and runs it to completion
func (o *Orchestrator) Collect(ctx context.Context, query string) ([]record.RawItem, error) {
	jobID, err := o.Trigger(ctx, query)
	if err != nil {
		return nil, err
	}
	return o.RunToCompletion(ctx, jobID)
}

// poll asks the provider once; errors are downgraded to pending
func (o *Orchestrator) poll(ctx context.Context, j *job, log *logger.Logger) provider.JobStatus {
	status, err := o.provider.PollOnce(ctx, j.ID)
	if err != nil {
		log.Debug().Err(err).Int("attempt", j.AttemptsMade).Msg("Poll failed, treating as pending")
		return provider.StatusPending
	}
	log.Debug().Int("attempt", j.AttemptsMade).Str("status", status.String()).Msg("Polled job")
	return status
}
