package velocity

import (
	"context"
	"io"
	"iter"

	"github.com/crimson-sun/velocity/internal/connector/file"
	"github.com/crimson-sun/velocity/internal/model"
)

// Action is one decoded action document, as returned by the board
// service. Only id, type, date and data.card / data.list are read.
type Action = map[string]any

// DecodeActions reads a JSON array or newline-delimited JSON stream of
// action documents from r.
func DecodeActions(ctx context.Context, r io.Reader) iter.Seq2[Action, error] {
	return func(yield func(Action, error) bool) {
		for raw, err := range file.Decode(ctx, r) {
			if !yield(Action(raw), err) {
				return
			}
		}
	}
}

func rawActions(actions iter.Seq2[Action, error]) iter.Seq2[model.RawAction, error] {
	return func(yield func(model.RawAction, error) bool) {
		for a, err := range actions {
			if !yield(model.RawAction(a), err) {
				return
			}
		}
	}
}
