package dira

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/dira-lottery/internal/logger"
	"github.com/pfrederiksen/dira-lottery/internal/lottery"
)

// Fetcher returns the subscriber counts of one lottery. *Client implements it.
type Fetcher interface {
	FetchSubscribers(ctx context.Context, project, lottery string) (SubscriberCounts, error)
}

// FailurePolicy decides what a failed fetch does to the whole aggregation.
type FailurePolicy string

const (
	// FailFast aborts on the first failure and cancels the rest of its chunk.
	FailFast FailurePolicy = "fail_fast"
	// CollectErrors keeps going and reports every failure in an *AggregateError.
	CollectErrors FailurePolicy = "collect"
)

// ParseFailurePolicy validates a policy name.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailFast, CollectErrors:
		return p, nil
	case "":
		return FailFast, nil
	default:
		return "", fmt.Errorf("unknown failure policy: %q (must be %q or %q)", s, FailFast, CollectErrors)
	}
}

// Aggregator fetches subscriber counts for many lotteries in chunks of
// BatchSize. Chunks run one after another; the calls inside a chunk run
// concurrently.
type Aggregator struct {
	fetcher Fetcher
	policy  FailurePolicy

	callTimeout  time.Duration
	maxRetries   int
	retryBackoff time.Duration

	logger  *logger.Logger
	metrics *logger.Metrics
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// NewAggregator creates an aggregator with the FailFast policy, no per-call
// timeout and no retries.
func NewAggregator(fetcher Fetcher, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		fetcher:      fetcher,
		policy:       FailFast,
		retryBackoff: time.Second,
		logger:       logger.Default(),
		metrics:      logger.DefaultMetrics(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithFailurePolicy sets the failure policy.
func WithFailurePolicy(p FailurePolicy) AggregatorOption {
	return func(a *Aggregator) {
		a.policy = p
	}
}

// WithCallTimeout bounds each fetch. Zero means no bound beyond the parent context.
func WithCallTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.callTimeout = d
	}
}

// WithRetries retries retryable fetch failures with exponential backoff.
// A negative n means no retries.
func WithRetries(n int, initial time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.maxRetries = max(n, 0)
		a.retryBackoff = initial
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(l *logger.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithMetrics sets the metrics tracker.
func WithMetrics(m *logger.Metrics) AggregatorOption {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

type slot struct {
	counts SubscriberCounts
	err    error
}

// Aggregate fetches the subscriber counts of every ref and keys them by the
// verbatim LotteryNumber. Duplicate lottery numbers are logged once per run
// and the last one in input order wins.
//
// With FailFast the first failure is returned and the map is nil. With
// CollectErrors the map holds every success and the error, if any, is an
// *AggregateError.
func (a *Aggregator) Aggregate(ctx context.Context, refs []lottery.Ref) (lottery.SubscriberMap, error) {
	runID := uuid.NewString()
	chunks := Chunk(refs, BatchSize)

	a.metrics.SetGauge("dira.aggregate.chunks", float64(len(chunks)))
	a.logger.Info("Aggregating subscribers", logger.Fields{
		"run_id":    runID,
		"lotteries": len(refs),
		"chunks":    len(chunks),
		"policy":    string(a.policy),
	})

	if dups := DuplicateLotteries(refs); len(dups) > 0 {
		a.logger.Warn("Duplicate lottery numbers, keeping the later result", logger.Fields{
			"run_id":    runID,
			"lotteries": dups,
		})
	}

	result := make(lottery.SubscriberMap, len(refs))
	var failures []error

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aggregating subscribers: %w", err)
		}

		start := time.Now()
		slots, err := a.runChunk(ctx, chunk)
		a.metrics.RecordTiming("dira.chunk", time.Since(start))
		if err != nil {
			a.logger.Error("Chunk failed", logger.Fields{
				"run_id": runID,
				"chunk":  i,
			}, err)
			return nil, err
		}

		for j, s := range slots {
			if s.err != nil {
				failures = append(failures, s.err)
				continue
			}
			a.store(result, chunk[j], s.counts)
		}

		a.logger.Debug("Chunk done", logger.Fields{
			"run_id":   runID,
			"chunk":    i,
			"size":     len(chunk),
			"duration": time.Since(start).String(),
		})
	}

	if len(failures) > 0 {
		return result, &AggregateError{Total: len(refs), Failures: failures}
	}
	return result, nil
}

// runChunk fetches every ref of one chunk concurrently. Each goroutine writes
// only its own slot.
func (a *Aggregator) runChunk(ctx context.Context, chunk []lottery.Ref) ([]slot, error) {
	slots := make([]slot, len(chunk))
	g, gctx := errgroup.WithContext(ctx)

	for j, ref := range chunk {
		g.Go(func() error {
			counts, err := a.fetch(gctx, ref)
			if err != nil {
				if a.policy == CollectErrors {
					slots[j].err = err
					return nil
				}
				return err
			}
			slots[j].counts = counts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

func (a *Aggregator) fetch(ctx context.Context, ref lottery.Ref) (SubscriberCounts, error) {
	start := time.Now()
	defer func() {
		a.metrics.RecordTiming("dira.fetch", time.Since(start))
	}()

	var counts SubscriberCounts
	operation := func() error {
		callCtx, cancel := a.callContext(ctx)
		defer cancel()

		c, err := a.fetcher.FetchSubscribers(callCtx, ref.ProjectNumber, ref.LotteryNumber)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		counts = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.retryBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.maxRetries)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		a.metrics.IncrCounter("dira.fetch.retry")
		a.logger.Warn("Retrying subscriber fetch", logger.Fields{
			"project": ref.ProjectNumber,
			"lottery": ref.LotteryNumber,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	})
	if err != nil {
		a.metrics.IncrCounter("dira.fetch.error")
		return SubscriberCounts{}, err
	}

	a.metrics.IncrCounter("dira.fetch.ok")
	return counts, nil
}

func (a *Aggregator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.callTimeout > 0 {
		return context.WithTimeout(ctx, a.callTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *Aggregator) store(result lottery.SubscriberMap, ref lottery.Ref, counts SubscriberCounts) {
	if _, exists := result[ref.LotteryNumber]; exists {
		a.metrics.IncrCounter("dira.aggregate.key_collision")
	}
	result[ref.LotteryNumber] = lottery.Registrants{
		Registrants:      counts.TotalSubscribers,
		LocalRegistrants: counts.TotalLocalSubscribers,
	}
}

func retryable(err error) bool {
	var remote *RemoteDataError
	if errors.As(err, &remote) {
		return remote.Retryable()
	}
	return false
}
