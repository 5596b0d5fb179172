package engine

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/crimson-sun/velocity/internal/engine/aggregate"
	"github.com/crimson-sun/velocity/internal/engine/classifier"
	"github.com/crimson-sun/velocity/internal/engine/dedup"
	"github.com/crimson-sun/velocity/internal/engine/normalize"
	"github.com/crimson-sun/velocity/internal/engine/pivot"
	"github.com/crimson-sun/velocity/internal/engine/rules"
	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/observability"
)

// Engine orchestrates the normalize → filter → classify → aggregate → pivot
// pipeline. An Engine holds only compiled rules and settings, so one value
// may run any number of inputs.
type Engine struct {
	pass       *rules.PassFilter
	classifier *classifier.Classifier
	logger     *slog.Logger
	dedup      bool
	aggregate  []aggregate.Option
	reported   []model.Category
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDedup drops repeated action ids before normalization. Off by default:
// a repeated id is counted like any other document.
func WithDedup(on bool) Option {
	return func(e *Engine) { e.dedup = on }
}

// WithAggregateOptions passes options to aggregate.RunningTotals on every run.
func WithAggregateOptions(opts ...aggregate.Option) Option {
	return func(e *Engine) { e.aggregate = append(e.aggregate, opts...) }
}

// New creates an Engine with the provided components.
func New(pass *rules.PassFilter, cls *classifier.Classifier, opts ...Option) *Engine {
	e := &Engine{
		pass:       pass,
		classifier: cls,
		logger:     slog.Default(),
		reported:   model.Reported(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Header returns the table's column names.
func (e *Engine) Header() []string {
	return pivot.Header(e.reported)
}

// Stats counts the documents a run discarded before classification.
type Stats struct {
	Duplicates int // repeated ids, only with WithDedup(true)
	Rejected   int // failed the pass filter
}

// Observations lazily normalizes, filters and classifies actions. The first
// error, from the source or from normalization, is yielded once and ends the
// sequence. No action is ever skipped silently.
func (e *Engine) Observations(actions iter.Seq2[model.RawAction, error]) iter.Seq2[model.Observation, error] {
	return e.observe(actions, nil)
}

func (e *Engine) observe(actions iter.Seq2[model.RawAction, error], out *Stats) iter.Seq2[model.Observation, error] {
	return func(yield func(model.Observation, error) bool) {
		st := out
		if st == nil {
			st = &Stats{}
		}
		*st = Stats{}
		source := actions
		if e.dedup {
			d := dedup.New()
			source = d.Filter(actions)
			defer func() {
				st.Duplicates = d.Dropped()
				if st.Duplicates > 0 {
					observability.RecordDuplicates(st.Duplicates)
					e.logger.Warn("dropped duplicate actions", "count", st.Duplicates)
				}
			}()
		}
		for raw, err := range source {
			if err != nil {
				yield(model.Observation{}, fmt.Errorf("read actions: %w", err))
				return
			}

			a, err := normalize.Normalize(raw)
			if err != nil {
				observability.RecordNormalizeError()
				yield(model.Observation{}, fmt.Errorf("normalize action %q: %w", raw.ID(), err))
				return
			}
			if !e.pass.Pass(a) {
				st.Rejected++
				observability.RecordRejected()
				e.logger.Debug("action rejected", "kind", a.Kind, "card", a.Card, "list", a.List)
				continue
			}

			obs := e.classifier.Observe(a)
			if e.logger.Enabled(context.Background(), slog.LevelDebug) && e.classifier.Ambiguous(a) {
				e.logger.Debug("ambiguous classification",
					"kind", a.Kind, "list", a.List, "matches", e.classifier.Matches(a), "chosen", obs.Category)
			}
			observability.RecordClassified(obs.Category)
			if !yield(obs, nil) {
				return
			}
		}
	}
}

// Run produces the velocity table for actions. Nothing is read until the
// first pull; then every action is bucketed before the first row is
// yielded. On failure a single error is yielded and no rows follow.
func (e *Engine) Run(actions iter.Seq2[model.RawAction, error], opts ...aggregate.Option) iter.Seq2[model.Row, error] {
	return e.RunWithStats(actions, nil, opts...)
}

// RunWithStats is Run that also fills st, when non-nil, once every action
// has been read.
func (e *Engine) RunWithStats(actions iter.Seq2[model.RawAction, error], st *Stats, opts ...aggregate.Option) iter.Seq2[model.Row, error] {
	return func(yield func(model.Row, error) bool) {
		daily, err := aggregate.Bucket(e.observe(actions, st))
		if err != nil {
			yield(model.Row{}, err)
			return
		}
		e.logger.Debug("bucketed actions", "dates", len(daily))

		aggOpts := append(append([]aggregate.Option(nil), e.aggregate...), opts...)
		for row := range pivot.Pivot(e.reported, aggregate.RunningTotals(daily, aggOpts...)) {
			if !yield(row, nil) {
				return
			}
		}
	}
}
