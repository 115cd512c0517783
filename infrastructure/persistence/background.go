// Package persistence holds what the tree store backends share: writes that
// run off the request goroutine.
package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stoat/Mewton-family-tree/application/ports"

	"go.uber.org/zap"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("store is closed")

// DefaultWriteTimeout bounds a single background write.
const DefaultWriteTimeout = 10 * time.Second

// WriteFunc persists one document synchronously.
type WriteFunc func(ctx context.Context, doc []byte) error

// Background runs writes on their own goroutines. Callers never see the
// outcome: failures are logged and reported to the observer. When writes
// overlap, a document older than one already written is dropped, so the last
// submitted document wins.
type Background struct {
	backend  string
	write    WriteFunc
	logger   *zap.Logger
	observer ports.StoreObserver
	timeout  time.Duration

	mu     sync.Mutex
	seq    uint64
	closed bool
	wg     sync.WaitGroup

	writeMu sync.Mutex
	written uint64

	pending atomic.Int64
}

// NewBackground creates a Background writer for the named backend.
func NewBackground(backend string, write WriteFunc, logger *zap.Logger, observer ports.StoreObserver) *Background {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = ports.NopStoreObserver{}
	}
	return &Background{
		backend:  backend,
		write:    write,
		logger:   logger,
		observer: observer,
		timeout:  DefaultWriteTimeout,
	}
}

// Submit schedules doc to be written and returns immediately.
func (b *Background) Submit(doc []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.seq++
	seq := b.seq
	b.wg.Add(1)
	b.pending.Add(1)
	b.mu.Unlock()

	buf := make([]byte, len(doc))
	copy(buf, doc)
	go b.run(seq, buf)
	return nil
}

func (b *Background) run(seq uint64, doc []byte) {
	defer b.wg.Done()
	defer b.pending.Add(-1)

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if seq <= b.written {
		b.logger.Debug("Skipping superseded write",
			zap.String("backend", b.backend),
			zap.Uint64("seq", seq),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	start := time.Now()
	err := b.write(ctx, doc)
	b.observer.ObserveStoreWrite(b.backend, time.Since(start), err)
	if err != nil {
		b.logger.Error("Failed to write tree",
			zap.String("backend", b.backend),
			zap.Int("bytes", len(doc)),
			zap.Error(err),
		)
		return
	}
	b.written = seq
}

// Pending reports how many submitted writes have not finished.
func (b *Background) Pending() int {
	return int(b.pending.Load())
}

// Wait blocks until every submitted write has finished or ctx is done.
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close refuses further writes and waits for the ones in flight.
func (b *Background) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return b.Wait(ctx)
}
