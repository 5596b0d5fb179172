package model

import (
	"maps"
	"strconv"
)

// Totals holds cumulative counts per category through Date, inclusive.
type Totals struct {
	Date   Date
	Counts map[Category]int
}

// Clone returns a copy that shares no state with t.
func (t Totals) Clone() Totals {
	return Totals{Date: t.Date, Counts: maps.Clone(t.Counts)}
}

// Row is one line of the output table: a date followed by one value per
// reported category, in column order.
type Row struct {
	Date   Date  `json:"date"`
	Values []int `json:"values"`
}

// Strings renders the row as [date, v1, v2, ...].
func (r Row) Strings() []string {
	out := make([]string, 0, len(r.Values)+1)
	out = append(out, r.Date.String())
	for _, v := range r.Values {
		out = append(out, strconv.Itoa(v))
	}
	return out
}
