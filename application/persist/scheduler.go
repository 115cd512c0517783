// Package persist coalesces a stream of tree states into a bounded number of
// writes.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/domain/tree"

	"go.uber.org/zap"
)

// DefaultWindow is the quiescence window used when none is configured.
const DefaultWindow = 400 * time.Millisecond

// Scheduler holds the latest unsaved tree and writes it once no new state has
// arrived for the quiescence window. Each Schedule cancels the pending timer
// and starts a new one, so a drag that emits hundreds of positions ends in a
// single write. Only the newest state is ever written.
type Scheduler struct {
	saver   ports.TreeSaver
	window  time.Duration
	timeout time.Duration
	logger  *zap.Logger
	onError func(error)

	mu      sync.Mutex
	pending *tree.Tree
	timer   *time.Timer
	gen     uint64
	closed  bool

	writeMu  sync.Mutex
	inflight sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithErrorHandler is called with every failed background write, after it
// has been logged.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// WithWriteTimeout bounds each background write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// NewScheduler creates a Scheduler writing to saver.
func NewScheduler(saver ports.TreeSaver, window time.Duration, logger *zap.Logger, opts ...Option) *Scheduler {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		saver:   saver,
		window:  window,
		timeout: 30 * time.Second,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule records t as the state to write and restarts the quiescence timer.
func (s *Scheduler) Schedule(t tree.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("Dropping tree scheduled after close")
		return
	}

	s.pending = &t
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.window, func() { s.fire(gen) })
}

// fire runs when a timer expires. A timer that was replaced after it had
// already started firing finds a newer generation and does nothing.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	t := *s.pending
	s.pending = nil
	s.timer = nil
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.write(ctx, t); err != nil {
		s.logger.Error("Failed to persist tree", zap.Error(err))
		if s.onError != nil {
			s.onError(err)
		}
	}
}

func (s *Scheduler) write(ctx context.Context, t tree.Tree) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	err := s.saver.SaveTree(ctx, t)
	s.logger.Debug("Persisted tree",
		zap.Int("people", len(t.People)),
		zap.Int("relationships", len(t.Relationships)),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return err
}

// Pending reports whether a state is waiting for its timer.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush cancels the timer and writes the pending state now. Unlike a timed
// write, its error is returned to the caller.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	t := s.pending
	s.pending = nil
	s.mu.Unlock()

	if t == nil {
		return nil
	}
	return s.write(ctx, *t)
}

// Close flushes the pending state and waits for timed writes in flight.
// Later calls to Schedule are dropped.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Flush(ctx)
	s.inflight.Wait()
	return err
}
