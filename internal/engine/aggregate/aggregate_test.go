package aggregate

import (
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/velocity/internal/model"
)

func date(month time.Month, day int) model.Date {
	return model.Date{Year: 2024, Month: month, Day: day}
}

func observations(obs ...model.Observation) iter.Seq2[model.Observation, error] {
	return func(yield func(model.Observation, error) bool) {
		for _, o := range obs {
			if !yield(o, nil) {
				return
			}
		}
	}
}

func obs(d model.Date, c model.Category) model.Observation {
	return model.Observation{Date: d, Category: c}
}

func TestBucket(t *testing.T) {
	dc, err := Bucket(observations(
		obs(date(1, 2), model.Create),
		obs(date(1, 1), model.Create),
		obs(date(1, 2), model.Remove),
		obs(date(1, 2), model.Create),
	))
	require.NoError(t, err)
	assert.Equal(t, []model.Date{date(1, 1), date(1, 2)}, dc.Dates())
	assert.Equal(t, 2, dc[date(1, 2)][model.Create])
	assert.Equal(t, 1, dc[date(1, 2)][model.Remove])
}

func TestBucket_StopsAtFirstError(t *testing.T) {
	boom := assert.AnError
	pulled := 0
	seq := func(yield func(model.Observation, error) bool) {
		pulled++
		if !yield(obs(date(1, 1), model.Create), nil) {
			return
		}
		pulled++
		if !yield(model.Observation{}, boom) {
			return
		}
		pulled++
		yield(obs(date(1, 2), model.Create), nil)
	}
	_, err := Bucket(seq)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, pulled)
}

func TestRunningTotals_Empty(t *testing.T) {
	rows := slices.Collect(RunningTotals(DailyCounts{}))
	assert.Empty(t, rows)
}

func TestRunningTotals_ScenarioFinishedOnLaterDay(t *testing.T) {
	dc := DailyCounts{}
	dc.Add(date(1, 1), model.Create)
	dc.Add(date(1, 3), model.Finish)

	rows := slices.Collect(RunningTotals(dc))
	require.Len(t, rows, 2)

	assert.Equal(t, date(1, 1), rows[0].Date)
	assert.Equal(t, map[model.Category]int{model.Ignore: 0, model.Create: 1, model.Remove: 0, model.Finish: 0}, rows[0].Counts)
	assert.Equal(t, date(1, 3), rows[1].Date)
	assert.Equal(t, map[model.Category]int{model.Ignore: 0, model.Create: 1, model.Remove: 0, model.Finish: 1}, rows[1].Counts)
}

func TestRunningTotals_PrefixSumAndMonotone(t *testing.T) {
	dc := DailyCounts{}
	days := []model.Date{date(2, 3), date(1, 31), date(2, 1), date(1, 5)}
	for i, d := range days {
		for range i + 1 {
			dc.Add(d, model.Create)
		}
		dc.Add(d, model.Ignore)
	}

	rows := slices.Collect(RunningTotals(dc))
	require.Len(t, rows, len(days))

	for i, row := range rows {
		if i > 0 {
			assert.True(t, rows[i-1].Date.Before(row.Date), "dates strictly ascending")
		}
		for _, c := range model.Categories() {
			want := 0
			for d, m := range dc {
				if !d.After(row.Date) {
					want += m[c]
				}
			}
			assert.Equal(t, want, row.Counts[c], "%s %s", row.Date, c)
			if i > 0 {
				assert.GreaterOrEqual(t, row.Counts[c], rows[i-1].Counts[c])
			}
		}
	}
	assert.Equal(t, 10, rows[len(rows)-1].Counts[model.Create])
	assert.Equal(t, 4, rows[len(rows)-1].Counts[model.Ignore])
}

func TestRunningTotals_RowsAreIndependent(t *testing.T) {
	dc := DailyCounts{}
	dc.Add(date(1, 1), model.Create)
	dc.Add(date(1, 2), model.Create)

	rows := slices.Collect(RunningTotals(dc))
	require.Len(t, rows, 2)
	rows[0].Counts[model.Create] = 100
	assert.Equal(t, 2, rows[1].Counts[model.Create])
}

func TestRunningTotals_StopsEarly(t *testing.T) {
	dc := DailyCounts{}
	dc.Add(date(1, 1), model.Create)
	dc.Add(date(1, 2), model.Create)

	n := 0
	for range RunningTotals(dc) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestRunningTotals_GapFill(t *testing.T) {
	dc := DailyCounts{}
	dc.Add(date(1, 30), model.Create)
	dc.Add(date(2, 2), model.Remove)

	rows := slices.Collect(RunningTotals(dc, WithGapFill()))
	require.Len(t, rows, 4)
	want := []model.Date{date(1, 30), date(1, 31), date(2, 1), date(2, 2)}
	for i, row := range rows {
		assert.Equal(t, want[i], row.Date)
		assert.Equal(t, 1, row.Counts[model.Create])
	}
	assert.Equal(t, 0, rows[2].Counts[model.Remove])
	assert.Equal(t, 1, rows[3].Counts[model.Remove])
}

func TestRunningTotals_GapFillThrough(t *testing.T) {
	dc := DailyCounts{}
	dc.Add(date(1, 1), model.Create)

	rows := slices.Collect(RunningTotals(dc, WithGapFillThrough(date(1, 3))))
	require.Len(t, rows, 3)
	assert.Equal(t, date(1, 3), rows[2].Date)
	assert.Equal(t, 1, rows[2].Counts[model.Create])

	// asOf before the last observation does not truncate.
	rows = slices.Collect(RunningTotals(dc, WithGapFillThrough(date(1, 1).AddDays(-5))))
	require.Len(t, rows, 1)
}
