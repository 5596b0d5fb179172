package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 30 * time.Second
)

var errDrainTimeout = errors.New("async output: drain timed out")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithDrainTimeout bounds how long Close waits for queued rows. Default: 30s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// Async decouples row production from a slow destination via a buffered
// channel. A background goroutine drains it to the wrapped output. Write
// errors go to errFunc as they happen; the first one is also returned by
// Close so a run never reports success after a lost row.
type Async struct {
	inner        output.Output
	ch           chan model.Row
	done         chan struct{}
	errFunc      func(error)
	bufSize      int
	drainTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error

	mu        sync.Mutex
	firstErr  error
	drained   bool // drain has returned
	abandoned bool // Close timed out; drain closes inner when it returns
}

// New wraps an output.Output in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.Row, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Begin is forwarded synchronously; it must precede every Write.
func (a *Async) Begin(ctx context.Context, header []string) error {
	return a.inner.Begin(ctx, header)
}

// Write sends the row into the channel, blocking while it is full.
func (a *Async) Write(ctx context.Context, row model.Row) error {
	select {
	case a.ch <- row:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner output. The inner output is never
// closed while a Write is in flight: after a timeout the drain goroutine
// closes it once the queued rows are written.
func (a *Async) Close() error {
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
			a.mu.Lock()
			firstErr := a.firstErr
			a.mu.Unlock()
			a.closeErr = errors.Join(firstErr, a.inner.Close())
		case <-time.After(a.drainTimeout):
			slog.Warn("async output drain timed out")
			a.mu.Lock()
			firstErr, drained := a.firstErr, a.drained
			a.abandoned = !drained
			a.mu.Unlock()
			errs := []error{errDrainTimeout, firstErr}
			if drained {
				errs = append(errs, a.inner.Close())
			}
			a.closeErr = errors.Join(errs...)
		}
	})
	return a.closeErr
}

// drain reads rows from the channel and writes them to the inner output.
func (a *Async) drain() {
	defer close(a.done)
	defer func() {
		a.mu.Lock()
		a.drained = true
		abandoned := a.abandoned
		a.mu.Unlock()
		if abandoned {
			if err := a.inner.Close(); err != nil {
				a.errFunc(err)
			}
		}
	}()
	for row := range a.ch {
		if err := a.inner.Write(context.Background(), row); err != nil {
			a.mu.Lock()
			if a.firstErr == nil {
				a.firstErr = err
			}
			a.mu.Unlock()
			a.errFunc(err)
		}
	}
}
