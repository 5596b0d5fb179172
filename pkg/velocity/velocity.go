package velocity

import (
	"fmt"
	"iter"
	"slices"

	"github.com/crimson-sun/velocity/internal/engine"
	"github.com/crimson-sun/velocity/internal/engine/aggregate"
	"github.com/crimson-sun/velocity/internal/engine/classifier"
	"github.com/crimson-sun/velocity/internal/engine/rules"
	"github.com/crimson-sun/velocity/internal/model"
)

// Counter turns action documents into running totals.
// Safe for concurrent use.
type Counter struct {
	engine *engine.Engine
	rules  []rules.Rule
}

// New compiles the rule tables for the configured lists.
func New(opts ...Option) (*Counter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	pass, err := rules.NewPassFilter(rules.DefaultPassRules(o.excluded))
	if err != nil {
		return nil, fmt.Errorf("velocity: %w", err)
	}
	rs := rules.DefaultRules(o.finished)
	cls, err := classifier.New(rs)
	if err != nil {
		return nil, fmt.Errorf("velocity: %w", err)
	}

	engOpts := []engine.Option{engine.WithDedup(o.dedup)}
	if o.logger != nil {
		engOpts = append(engOpts, engine.WithLogger(o.logger))
	}
	switch {
	case !o.asOf.IsZero():
		engOpts = append(engOpts, engine.WithAggregateOptions(aggregate.WithGapFillThrough(model.DateOf(o.asOf))))
	case o.gapFill:
		engOpts = append(engOpts, engine.WithAggregateOptions(aggregate.WithGapFill()))
	}

	return &Counter{engine: engine.New(pass, cls, engOpts...), rules: rs}, nil
}

// Count lazily classifies actions and yields one row per date in ascending
// order. Rows appear only after every action has been read. The first
// error, from actions or from a malformed document, is yielded once and
// ends the sequence.
func (c *Counter) Count(actions iter.Seq2[Action, error]) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for r, err := range c.engine.Run(rawActions(actions)) {
			if err != nil {
				yield(Row{}, err)
				return
			}
			if !yield(rowFromModel(r), nil) {
				return
			}
		}
	}
}

// CountAll is Count over a slice, collecting the rows.
func (c *Counter) CountAll(actions []Action) ([]Row, error) {
	var rows []Row
	for r, err := range c.Count(sliceSeq(actions)) {
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Rules describes the classification rules in evaluation order.
func (c *Counter) Rules() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.String()
	}
	return out
}

// Count is New followed by Counter.Count. A configuration error is
// yielded as the only element.
func Count(actions iter.Seq2[Action, error], opts ...Option) iter.Seq2[Row, error] {
	c, err := New(opts...)
	if err != nil {
		return func(yield func(Row, error) bool) { yield(Row{}, err) }
	}
	return c.Count(actions)
}

// Header returns the column names matching Row's fields.
func Header() []string {
	return slices.Clone(header)
}

var header = []string{"date", model.Create.String(), model.Remove.String(), model.Finish.String()}

// rowFromModel converts the internal pivot row. Values follow
// model.Reported(): create, remove, finish.
func rowFromModel(r model.Row) Row {
	return Row{
		Date:   r.Date.String(),
		Create: r.Values[0],
		Remove: r.Values[1],
		Finish: r.Values[2],
	}
}

func sliceSeq(actions []Action) iter.Seq2[Action, error] {
	return func(yield func(Action, error) bool) {
		for _, a := range actions {
			if !yield(a, nil) {
				return
			}
		}
	}
}
