// Package observability exposes the pipeline's Prometheus counters.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crimson-sun/velocity/internal/model"
)

var (
	actionsReadCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "velocity",
		Subsystem: "source",
		Name:      "actions_read_total",
		Help:      "Number of action documents read per source.",
	}, []string{"source"})

	duplicateCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "velocity",
		Subsystem: "engine",
		Name:      "duplicates_dropped_total",
		Help:      "Number of action documents dropped as repeated ids.",
	})

	rejectedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "velocity",
		Subsystem: "engine",
		Name:      "actions_rejected_total",
		Help:      "Number of actions dropped by the pass filter.",
	})

	classifiedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "velocity",
		Subsystem: "engine",
		Name:      "actions_classified_total",
		Help:      "Number of actions classified, grouped by category.",
	}, []string{"category"})

	normalizeErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "velocity",
		Subsystem: "engine",
		Name:      "normalize_errors_total",
		Help:      "Number of action documents that failed normalization.",
	})

	rowsWrittenCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "velocity",
		Subsystem: "output",
		Name:      "rows_written_total",
		Help:      "Number of table rows written per output.",
	}, []string{"output"})
)

func init() {
	prometheus.MustRegister(
		actionsReadCounter,
		duplicateCounter,
		rejectedCounter,
		classifiedCounter,
		normalizeErrorCounter,
		rowsWrittenCounter,
	)
}

// RecordActionRead counts one document delivered by source.
func RecordActionRead(source string) {
	actionsReadCounter.WithLabelValues(source).Inc()
}

// RecordDuplicates counts n documents dropped as repeats.
func RecordDuplicates(n int) { duplicateCounter.Add(float64(n)) }

func RecordRejected() { rejectedCounter.Inc() }

// RecordClassified counts one observation under its category.
func RecordClassified(c model.Category) {
	classifiedCounter.WithLabelValues(c.String()).Inc()
}

func RecordNormalizeError() { normalizeErrorCounter.Inc() }

// RecordRowWritten counts one row delivered to output.
func RecordRowWritten(output string) {
	rowsWrittenCounter.WithLabelValues(output).Inc()
}

// RowsWritten returns the row counter for output.
func RowsWritten(output string) prometheus.Counter {
	return rowsWrittenCounter.WithLabelValues(output)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ActionsRead returns the read counter for source.
func ActionsRead(source string) prometheus.Counter {
	return actionsReadCounter.WithLabelValues(source)
}
