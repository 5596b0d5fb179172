package velocity

import (
	"log/slog"
	"time"
)

type options struct {
	finished []string
	excluded []string
	gapFill  bool
	asOf     time.Time
	dedup    bool
	logger   *slog.Logger
}

// Option configures a Counter.
type Option func(*options)

// WithFinishedLists names the lists whose cards count as finished.
func WithFinishedLists(lists ...string) Option {
	return func(o *options) {
		o.finished = append(o.finished, lists...)
	}
}

// WithExcludedLists names the lists whose actions are not counted at all.
func WithExcludedLists(lists ...string) Option {
	return func(o *options) {
		o.excluded = append(o.excluded, lists...)
	}
}

// WithGapFill emits a row for every calendar date between the first and
// last observed dates. Default: only dates with activity.
func WithGapFill() Option {
	return func(o *options) {
		o.gapFill = true
	}
}

// WithAsOf fills dates through t, repeating the final totals. Implies
// WithGapFill.
func WithAsOf(t time.Time) Option {
	return func(o *options) {
		o.gapFill = true
		o.asOf = t
	}
}

// WithDedup drops documents whose id was already seen in the same run, for
// inputs that may repeat (overlapping exports, redelivered messages).
// Default: false, every document is counted.
func WithDedup(on bool) Option {
	return func(o *options) {
		o.dedup = on
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{}
}
