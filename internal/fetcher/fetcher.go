// Package fetcher runs a producer asynchronously and exposes its
// progress as an observable snapshot: data, loading flag, error text,
// and retry count. Failed attempts are retried with linearly growing
// delays up to a configured limit, and a superseded or closed run can
// never write its late result into the snapshot.
package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"comicshelf/internal/logger"
	"comicshelf/internal/metrics"
)

// State identifies where a fetch currently is in its lifecycle
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRetrying
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is an end state
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Snapshot is a point-in-time view of a fetch. Data holds the last
// successful result and survives later failures, so consumers can show
// stale content alongside an error.
type Snapshot[T any] struct {
	Data       T
	Loading    bool
	Err        string
	RetryCount int
	State      State
}

// Producer yields one result. It must honor ctx cancellation.
type Producer[T any] func(ctx context.Context) (T, error)

// Options tune the retry behavior
type Options struct {
	// RetryLimit is the number of retries after the first failure;
	// total attempts are RetryLimit+1. Zero disables retries.
	RetryLimit int
	// RetryDelay is the base backoff; attempt n waits n*RetryDelay
	RetryDelay time.Duration
	// Retryable decides which errors are worth retrying. Nil retries
	// every error.
	Retryable func(error) bool
	// Operation labels metric samples for this fetcher
	Operation string
	// Metrics records each attempt's outcome and duration. Nil
	// discards them.
	Metrics metrics.Collector
	Logger  *logger.Logger
}

// Fetcher drives a Producer through the fetch lifecycle
type Fetcher[T any] struct {
	producer Producer[T]
	opts     Options

	mu     sync.Mutex
	snap   Snapshot[T]
	gen    int
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// New creates a Fetcher in the idle state. Nothing runs until Fetch.
func New[T any](producer Producer[T], opts Options) *Fetcher[T] {
	if opts.Retryable == nil {
		opts.Retryable = func(error) bool { return true }
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Operation == "" {
		opts.Operation = "fetch"
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	return &Fetcher[T]{
		producer: producer,
		opts:     opts,
		snap:     Snapshot[T]{State: StateIdle},
		done:     make(chan struct{}),
	}
}

// Snapshot returns the current view of the fetch
func (f *Fetcher[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Fetch starts a new run, superseding any run still in flight. The
// previous run's context is cancelled and its late results are
// discarded.
func (f *Fetcher[T]) Fetch(ctx context.Context) {
	f.start(ctx, 0)
}

// Retry restarts after a failure with a clean retry budget and no
// initial backoff. It is also safe to call from any other state.
func (f *Fetcher[T]) Retry(ctx context.Context) {
	f.start(ctx, 0)
}

func (f *Fetcher[T]) start(ctx context.Context, retryCount int) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if f.cancel != nil {
		f.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.gen++
	gen := f.gen

	if f.snap.State.Terminal() || f.done == nil {
		f.done = make(chan struct{})
	}
	done := f.done

	f.snap.Loading = true
	f.snap.Err = ""
	f.snap.RetryCount = retryCount
	f.snap.State = StateLoading
	f.mu.Unlock()

	go f.run(runCtx, gen, done)
}

func (f *Fetcher[T]) run(ctx context.Context, gen int, done chan struct{}) {
	maxAttempts := f.opts.RetryLimit + 1
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptStart := time.Now()
		data, err := f.producer(ctx)
		if ctx.Err() != nil {
			// Superseded or closed; the snapshot belongs to someone else now
			return
		}
		attempts = attempt
		elapsed := time.Since(attemptStart).Seconds()

		if err == nil {
			f.opts.Metrics.RequestCompleted(f.opts.Operation, "success", elapsed)
			f.publish(gen, done, true, func(s *Snapshot[T]) {
				s.Data = data
				s.Loading = false
				s.Err = ""
				s.State = StateSucceeded
			})
			return
		}

		lastErr = err
		if attempt == maxAttempts || !f.opts.Retryable(err) {
			f.opts.Metrics.RequestCompleted(f.opts.Operation, "error", elapsed)
			break
		}
		f.opts.Metrics.RequestCompleted(f.opts.Operation, "retry", elapsed)

		f.opts.Logger.Debug("fetch attempt failed, backing off", map[string]interface{}{
			"attempt": attempt,
			"max":     maxAttempts,
			"error":   err.Error(),
		})
		f.publish(gen, done, false, func(s *Snapshot[T]) {
			s.Loading = true
			s.RetryCount = attempt
			s.Err = fmt.Sprintf("attempt %d/%d: %v", attempt, maxAttempts, err)
			s.State = StateRetrying
		})

		// Linear backoff: the nth retry waits n times the base delay
		timer := time.NewTimer(time.Duration(attempt) * f.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	err := lastErr
	f.publish(gen, done, true, func(s *Snapshot[T]) {
		s.Loading = false
		s.Err = fmt.Sprintf("failed after %d attempts: %v", attempts, err)
		s.State = StateFailed
	})
}

// publish applies a snapshot mutation if the run is still current.
// terminal runs also release anyone blocked in Wait.
func (f *Fetcher[T]) publish(gen int, done chan struct{}, terminal bool, apply func(*Snapshot[T])) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.closed {
		return
	}
	apply(&f.snap)
	if terminal {
		close(done)
	}
}

// Wait blocks until the current run reaches a terminal state and
// returns that snapshot. It returns immediately when no run is active.
func (f *Fetcher[T]) Wait(ctx context.Context) (Snapshot[T], error) {
	f.mu.Lock()
	if f.snap.State.Terminal() || f.snap.State == StateIdle {
		snap := f.snap
		f.mu.Unlock()
		return snap, nil
	}
	done := f.done
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return f.Snapshot(), ctx.Err()
	case <-done:
		return f.Snapshot(), nil
	}
}

// Close cancels any in-flight run and freezes the snapshot. Further
// Fetch and Retry calls are no-ops.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
	}
	// Release waiters; the in-flight run can no longer close done
	if !f.snap.State.Terminal() {
		close(f.done)
	}
}
