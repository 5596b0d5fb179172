package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/crimson-sun/velocity/internal/model"
)

const (
	defaultBatchSize     = 500
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
	defaultRetryDelay    = time.Second
	maxRetries           = 3
)

// Payload is the JSON body of every POST.
type Payload struct {
	Board   string      `json:"board,omitempty"`
	Columns []string    `json:"columns"`
	Rows    []model.Row `json:"rows"`
}

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithBoard labels each payload with the board name.
func WithBoard(name string) Option {
	return func(o *Output) { o.board = name }
}

// WithBatchSize sets the number of rows accumulated before a flush. Default: 500.
func WithBatchSize(n int) Option {
	return func(o *Output) { o.batchSize = n }
}

// WithFlushInterval sets the maximum time between flushes. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(o *Output) { o.flushInterval = d }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// WithRetryDelay sets the first retry delay, doubled on each attempt. Default: 1s.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Output) { o.retryDelay = d }
}

// WithOnError sets a callback invoked when a timer-triggered flush fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(o *Output) { o.errFunc = f }
}

// Output POSTs table rows to an HTTP endpoint as JSON. Rows accumulate in an
// internal buffer and are flushed when batchSize is reached or flushInterval
// elapses. Retries on 5xx with exponential backoff.
type Output struct {
	client        *http.Client
	url           string
	headers       map[string]string
	board         string
	columns       []string
	batchSize     int
	flushInterval time.Duration
	retryDelay    time.Duration
	errFunc       func(error)
	mu            sync.Mutex
	pending       []model.Row
	timer         *time.Timer
}

// New creates a webhook output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client:        &http.Client{Timeout: defaultTimeout},
		url:           url,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		retryDelay:    defaultRetryDelay,
		errFunc:       func(err error) { slog.Warn("webhook flush error", "error", err) },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Begin records the column names sent with every batch.
func (o *Output) Begin(_ context.Context, header []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.columns = header
	return nil
}

// Write appends a row to the batch. When batchSize is reached, the batch
// is flushed immediately. A timer is started on the first row to ensure
// the batch flushes even if batchSize is never reached.
func (o *Output) Write(_ context.Context, row model.Row) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = append(o.pending, row)

	if len(o.pending) >= o.batchSize {
		return o.flushLocked()
	}

	// Start timer on first row in a new batch.
	if len(o.pending) == 1 {
		o.timer = time.AfterFunc(o.flushInterval, func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if err := o.flushLocked(); err != nil {
				o.errFunc(err)
			}
		})
	}
	return nil
}

// Close flushes any remaining rows and stops the timer.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if len(o.pending) > 0 {
		return o.flushLocked()
	}
	return nil
}

// flushLocked sends the pending batch via HTTP POST. Caller must hold o.mu.
func (o *Output) flushLocked() error {
	if len(o.pending) == 0 {
		return nil
	}
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}

	batch := o.pending
	o.pending = nil

	body, err := json.Marshal(Payload{Board: o.board, Columns: o.columns, Rows: batch})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	return o.postWithRetry(body)
}

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (o *Output) postWithRetry(body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(o.retryDelay << (attempt - 1))
		}

		req, err := http.NewRequest(http.MethodPost, o.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range o.headers {
			req.Header.Set(k, v)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("webhook: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
