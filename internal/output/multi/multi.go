package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/output"
)

// Multi fans out the table to multiple output.Output implementations.
// Each call is delivered to every wrapped output sequentially. If one output
// fails, the remaining outputs still receive the call.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Begin announces the header to every wrapped output.
func (m *Multi) Begin(ctx context.Context, header []string) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Begin(ctx, header); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Write delivers the row to every wrapped output. Errors are collected
// but do not prevent delivery to subsequent outputs.
func (m *Multi) Write(ctx context.Context, row model.Row) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
