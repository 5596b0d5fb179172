package file

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/output"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Output.
type Option func(*Output)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithFormat selects CSV or TSV. Default: TSV.
func WithFormat(f output.Format) Option {
	return func(o *Output) { o.format = f }
}

// Output writes the table as delimited text, replacing any existing file.
type Output struct {
	w       *bufio.Writer
	csv     *csv.Writer
	f       *os.File
	mu      sync.Mutex
	path    string
	format  output.Format
	bufSize int
}

// New creates the file at path, truncating it if it exists.
func New(path string, opts ...Option) (*Output, error) {
	o := &Output{
		path:    path,
		format:  output.TSV,
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.format == output.Table {
		return nil, fmt.Errorf("file output: format %q is for terminals", o.format)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("file output: create %s: %w", path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, o.bufSize)
	o.csv = csv.NewWriter(o.w)
	o.csv.Comma = o.format.Delimiter()
	return o, nil
}

// Path returns the file being written.
func (o *Output) Path() string { return o.path }

func (o *Output) Begin(_ context.Context, header []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.csv.Write(header); err != nil {
		return fmt.Errorf("file output: write header: %w", err)
	}
	return nil
}

func (o *Output) Write(_ context.Context, row model.Row) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.csv.Write(row.Strings()); err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.csv.Flush()
	if err := o.csv.Error(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}

// DatedPath inserts _YYYYMMDD before the extension of path:
// "counts.csv" -> "counts_20240105.csv".
func DatedPath(path string, day time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_" + day.UTC().Format("20060102") + ext
}
