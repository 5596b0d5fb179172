package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/velocity/internal/model"
)

type mockOutput struct {
	mu     sync.Mutex
	header []string
	rows   []model.Row
	closed bool
	err    error         // if set, Write returns this
	delay  time.Duration // if >0, Write sleeps first
}

func (m *mockOutput) Begin(_ context.Context, header []string) error {
	m.mu.Lock()
	m.header = header
	m.mu.Unlock()
	return nil
}

func (m *mockOutput) Write(_ context.Context, row model.Row) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	m.rows = append(m.rows, row)
	m.mu.Unlock()
	return m.err
}

func (m *mockOutput) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *mockOutput) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func testRow(day int) model.Row {
	return model.Row{Date: model.Date{Year: 2024, Month: time.January, Day: day}, Values: []int{day}}
}

func TestRowsFlowThroughInOrder(t *testing.T) {
	inner := &mockOutput{}
	a := New(inner, WithBufferSize(16))

	if err := a.Begin(context.Background(), []string{"date", "create"}); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	for i := 1; i <= 10; i++ {
		if err := a.Write(context.Background(), testRow(i)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if inner.rowCount() != 10 {
		t.Fatalf("got %d rows, want 10", inner.rowCount())
	}
	for i, r := range inner.rows {
		if r.Date.Day != i+1 {
			t.Fatalf("row %d has day %d", i, r.Date.Day)
		}
	}
	if len(inner.header) != 2 || !inner.closed {
		t.Fatalf("expected header forwarded and inner closed")
	}
}

func TestBackpressureBlocks(t *testing.T) {
	// Inner output is slow; buffer size is 1.
	inner := &mockOutput{delay: 50 * time.Millisecond}
	a := New(inner, WithBufferSize(1))

	// First write fills the buffer.
	a.Write(context.Background(), testRow(1))

	// Second write should block until the drain goroutine consumes the first.
	done := make(chan struct{})
	go func() {
		a.Write(context.Background(), testRow(2))
		close(done)
	}()

	select {
	case <-done:
		// Unblocked eventually.
	case <-time.After(2 * time.Second):
		t.Fatal("Write blocked indefinitely (expected eventual unblock via drain)")
	}

	a.Close()
}

func TestWriteHonoursContext(t *testing.T) {
	inner := &mockOutput{delay: time.Second}
	a := New(inner, WithBufferSize(1), WithDrainTimeout(5*time.Second))
	defer a.Close()

	a.Write(context.Background(), testRow(1)) // taken by drain, sleeping
	a.Write(context.Background(), testRow(2)) // fills buffer

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Write(ctx, testRow(3)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCloseDrainsRemaining(t *testing.T) {
	inner := &mockOutput{}
	a := New(inner, WithBufferSize(100))

	for i := 0; i < 50; i++ {
		a.Write(context.Background(), testRow(1))
	}

	a.Close()

	if inner.rowCount() != 50 {
		t.Errorf("after Close, got %d rows, want 50 (drain incomplete)", inner.rowCount())
	}
}

func TestErrorCallbackInvokedAndCloseReports(t *testing.T) {
	inner := &mockOutput{err: errors.New("write failed")}
	var errorCount atomic.Int64
	a := New(inner, WithBufferSize(16), WithOnError(func(err error) {
		errorCount.Add(1)
	}))

	for i := 0; i < 5; i++ {
		a.Write(context.Background(), testRow(1))
	}

	err := a.Close()

	if errorCount.Load() != 5 {
		t.Errorf("error callback called %d times, want 5", errorCount.Load())
	}
	if err == nil || err.Error() != "write failed" {
		t.Errorf("Close error = %v, want write failed", err)
	}
}

func TestNoGoroutineLeakAfterClose(t *testing.T) {
	inner := &mockOutput{}
	a := New(inner, WithBufferSize(16))

	a.Write(context.Background(), testRow(1))
	a.Close()

	// The done channel should be closed, indicating the drain goroutine exited.
	select {
	case <-a.done:
		// Goroutine finished.
	case <-time.After(time.Second):
		t.Fatal("drain goroutine did not exit after Close")
	}
}

func TestCloseIdempotent(t *testing.T) {
	inner := &mockOutput{}
	a := New(inner, WithBufferSize(16))

	a.Write(context.Background(), testRow(1))

	// Close twice should not panic.
	if err := a.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}

// blockingOutput holds each Write until release is closed and records
// whether Close ever overlapped a Write.
type blockingOutput struct {
	release  chan struct{}
	writing  atomic.Bool
	overlap  atomic.Bool
	closed   chan struct{}
	closeOne sync.Once
}

func (b *blockingOutput) Begin(context.Context, []string) error { return nil }

func (b *blockingOutput) Write(context.Context, model.Row) error {
	b.writing.Store(true)
	<-b.release
	b.writing.Store(false)
	return nil
}

func (b *blockingOutput) Close() error {
	if b.writing.Load() {
		b.overlap.Store(true)
	}
	b.closeOne.Do(func() { close(b.closed) })
	return nil
}

func TestDrainTimeoutDefersInnerClose(t *testing.T) {
	inner := &blockingOutput{release: make(chan struct{}), closed: make(chan struct{})}
	a := New(inner, WithBufferSize(4), WithDrainTimeout(20*time.Millisecond))

	for i := 1; i <= 2; i++ {
		if err := a.Write(context.Background(), testRow(i)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}

	err := a.Close()
	if !errors.Is(err, errDrainTimeout) {
		t.Fatalf("expected drain timeout, got %v", err)
	}
	select {
	case <-inner.closed:
		t.Fatal("inner closed while a write was in flight")
	default:
	}

	close(inner.release)
	select {
	case <-inner.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("inner never closed after drain finished")
	}
	if inner.overlap.Load() {
		t.Fatal("Close overlapped a Write")
	}
}
