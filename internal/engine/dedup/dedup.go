package dedup

import (
	"iter"

	"github.com/crimson-sun/velocity/internal/model"
)

// Deduplicator drops action documents whose id has already been seen.
// Paginated reads can overlap at page boundaries and a topic may redeliver,
// so the same action can arrive more than once. Documents without an id
// always pass.
type Deduplicator struct {
	seen    map[string]struct{}
	dropped int
}

// New creates an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Keep reports whether raw is the first document with its id.
func (d *Deduplicator) Keep(raw model.RawAction) bool {
	id := raw.ID()
	if id == "" {
		return true
	}
	if _, ok := d.seen[id]; ok {
		d.dropped++
		return false
	}
	d.seen[id] = struct{}{}
	return true
}

// Dropped returns how many documents Keep has rejected.
func (d *Deduplicator) Dropped() int { return d.dropped }

// Filter wraps seq, dropping repeated documents. Errors pass through.
func (d *Deduplicator) Filter(seq iter.Seq2[model.RawAction, error]) iter.Seq2[model.RawAction, error] {
	return func(yield func(model.RawAction, error) bool) {
		for raw, err := range seq {
			if err == nil && !d.Keep(raw) {
				continue
			}
			if !yield(raw, err) {
				return
			}
		}
	}
}
