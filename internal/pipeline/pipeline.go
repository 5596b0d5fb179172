package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/crimson-sun/velocity/internal/connector"
	"github.com/crimson-sun/velocity/internal/engine"
	"github.com/crimson-sun/velocity/internal/engine/aggregate"
	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/observability"
	"github.com/crimson-sun/velocity/internal/output"
)

// Pipeline connects a connector, engine, and output into one counting run.
type Pipeline struct {
	connector connector.Connector
	engine    *engine.Engine
	output    output.Output
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, eng *engine.Engine, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector: conn,
		engine:    eng,
		output:    out,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pipeline")
	return p
}

// Summary describes a finished run.
type Summary struct {
	Actions    int        // documents read from the source
	Duplicates int        // documents dropped as repeated ids
	Rejected   int        // documents that failed the pass filter
	Rows       int        // table rows written
	LastDate   model.Date // date of the final row, zero when the table is empty
	Elapsed    time.Duration
}

// Count reads every action from the source, then writes the header and the
// running-totals table to the output. The first error from any stage ends
// the run; rows already written stay written.
func (p *Pipeline) Count(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams, opts ...aggregate.Option) (Summary, error) {
	start := time.Now()
	var sum Summary

	actions := p.counted(cfg.Provider, p.connector.Actions(ctx, cfg, params), &sum.Actions)

	if err := p.output.Begin(ctx, p.engine.Header()); err != nil {
		return sum, fmt.Errorf("pipeline output: %w", err)
	}
	var st engine.Stats
	for row, err := range p.engine.RunWithStats(actions, &st, opts...) {
		if err != nil {
			return sum, fmt.Errorf("pipeline process: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := p.output.Write(ctx, row); err != nil {
			return sum, fmt.Errorf("pipeline output: %w", err)
		}
		sum.Rows++
		sum.LastDate = row.Date
	}
	sum.Duplicates = st.Duplicates
	sum.Rejected = st.Rejected

	sum.Elapsed = time.Since(start)
	p.logger.Info("count complete",
		"provider", cfg.Provider,
		"actions", sum.Actions,
		"duplicates", sum.Duplicates,
		"rejected", sum.Rejected,
		"rows", sum.Rows,
		"elapsed", sum.Elapsed,
	)
	return sum, nil
}

// counted records every document the source delivers.
func (p *Pipeline) counted(source string, seq iter.Seq2[model.RawAction, error], n *int) iter.Seq2[model.RawAction, error] {
	return func(yield func(model.RawAction, error) bool) {
		for raw, err := range seq {
			if err == nil {
				*n++
				observability.RecordActionRead(source)
			}
			if !yield(raw, err) {
				return
			}
		}
	}
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}
