// Package pivot flattens running totals into table rows.
package pivot

import (
	"iter"

	"github.com/crimson-sun/velocity/internal/model"
)

// Header returns the column names: "date" followed by each reported
// category's name.
func Header(reported []model.Category) []string {
	h := make([]string, 0, len(reported)+1)
	h = append(h, "date")
	for _, c := range reported {
		h = append(h, c.String())
	}
	return h
}

// Pivot maps each Totals to a Row holding the reported categories' values in
// column order. Categories absent from a Totals read as 0.
func Pivot(reported []model.Category, totals iter.Seq[model.Totals]) iter.Seq[model.Row] {
	return func(yield func(model.Row) bool) {
		for t := range totals {
			if !yield(Flatten(reported, t)) {
				return
			}
		}
	}
}

// Flatten converts a single Totals.
func Flatten(reported []model.Category, t model.Totals) model.Row {
	values := make([]int, len(reported))
	for i, c := range reported {
		values[i] = t.Counts[c]
	}
	return model.Row{Date: t.Date, Values: values}
}

// Unpivot rebuilds per-date counts for the reported categories from rows.
func Unpivot(reported []model.Category, rows []model.Row) map[model.Date]map[model.Category]int {
	out := make(map[model.Date]map[model.Category]int, len(rows))
	for _, r := range rows {
		m := make(map[model.Category]int, len(reported))
		for i, c := range reported {
			if i < len(r.Values) {
				m[c] = r.Values[i]
			}
		}
		out[r.Date] = m
	}
	return out
}
