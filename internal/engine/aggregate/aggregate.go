// Package aggregate turns classified observations into cumulative daily
// totals.
package aggregate

import (
	"iter"
	"maps"
	"slices"

	"github.com/crimson-sun/velocity/internal/model"
)

// DailyCounts holds per-date counts of observations by category.
type DailyCounts map[model.Date]map[model.Category]int

// Add counts one observation of c on d.
func (dc DailyCounts) Add(d model.Date, c model.Category) {
	m, ok := dc[d]
	if !ok {
		m = make(map[model.Category]int)
		dc[d] = m
	}
	m[c]++
}

// Dates returns the observed dates in ascending order.
func (dc DailyCounts) Dates() []model.Date {
	return slices.SortedFunc(maps.Keys(dc), model.Date.Compare)
}

// Bucket drains obs into per-date counts. The first error stops the drain
// and is returned as is.
func Bucket(obs iter.Seq2[model.Observation, error]) (DailyCounts, error) {
	dc := make(DailyCounts)
	for o, err := range obs {
		if err != nil {
			return nil, err
		}
		dc.Add(o.Date, o.Category)
	}
	return dc, nil
}

type options struct {
	fill bool
	asOf model.Date
}

// Option adjusts RunningTotals.
type Option func(*options)

// WithGapFill emits a row for every calendar date between the first and last
// observed dates. Gap rows repeat the previous totals.
func WithGapFill() Option {
	return func(o *options) { o.fill = true }
}

// WithGapFillThrough is WithGapFill with the range extended to asOf when
// asOf is later than the last observed date.
func WithGapFillThrough(asOf model.Date) Option {
	return func(o *options) {
		o.fill = true
		o.asOf = asOf
	}
}

// RunningTotals yields one row per date in ascending order. Each row carries
// every category, including Ignore, summed over all dates up to and
// including its own. Rows never share their Counts map.
func RunningTotals(daily DailyCounts, opts ...Option) iter.Seq[model.Totals] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(yield func(model.Totals) bool) {
		dates := daily.Dates()
		if len(dates) == 0 {
			return
		}
		acc := model.Totals{Counts: make(map[model.Category]int, len(model.Categories()))}
		for _, c := range model.Categories() {
			acc.Counts[c] = 0
		}

		if !o.fill {
			for _, d := range dates {
				acc = step(acc, d, daily[d])
				if !yield(acc.Clone()) {
					return
				}
			}
			return
		}

		last := dates[len(dates)-1]
		if o.asOf.After(last) {
			last = o.asOf
		}
		for d := dates[0]; !d.After(last); d = d.AddDays(1) {
			acc = step(acc, d, daily[d])
			if !yield(acc.Clone()) {
				return
			}
		}
	}
}

// step folds one day's counts into acc. A nil day leaves the totals as is.
func step(acc model.Totals, d model.Date, day map[model.Category]int) model.Totals {
	acc.Date = d
	for c, n := range day {
		acc.Counts[c] += n
	}
	return acc
}
