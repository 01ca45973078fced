// Package sink provides combinators around sim.Sink.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/nbodysim/internal/sim"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrClosed = errors.New("sink: closed")

// Async decouples the engine from a slow sink through a bounded queue.
// WriteSnapshot blocks while the queue is full. After the wrapped sink
// fails, every further write returns that error.
type Async struct {
	next   sim.Sink
	queue  chan sim.Snapshot
	group  *errgroup.Group
	logger *zap.Logger

	mu      sync.RWMutex
	closed  bool
	failed  chan struct{}
	errOnce sync.Once
	err     error

	written int
}

func NewAsync(next sim.Sink, capacity int, logger *zap.Logger) *Async {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g, ctx := errgroup.WithContext(context.Background())
	a := &Async{
		next:   next,
		queue:  make(chan sim.Snapshot, capacity),
		group:  g,
		logger: logger,
		failed: make(chan struct{}),
	}
	g.Go(func() error { return a.consume(ctx) })
	return a
}

func (a *Async) consume(ctx context.Context) error {
	for s := range a.queue {
		if err := a.next.WriteSnapshot(ctx, s); err != nil {
			err = fmt.Errorf("async sink at step %d: %w", s.Step, err)
			a.fail(err)
			a.logger.Error("snapshot sink failed", zap.Int64("step", s.Step), zap.Error(err))
			return err
		}
		a.written++
	}
	return nil
}

func (a *Async) fail(err error) {
	a.errOnce.Do(func() {
		a.err = err
		close(a.failed)
	})
}

// Err returns the first error of the wrapped sink, if any.
func (a *Async) Err() error {
	select {
	case <-a.failed:
		return a.err
	default:
		return nil
	}
}

func (a *Async) WriteSnapshot(ctx context.Context, s sim.Snapshot) error {
	if err := a.Err(); err != nil {
		return err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- s:
		return nil
	case <-a.failed:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes queued snapshots and waits for the consumer. It returns the
// first error of the wrapped sink.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return a.Err()
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	err := a.group.Wait()
	a.logger.Debug("async sink closed", zap.Int("written", a.written), zap.Error(err))
	return err
}
