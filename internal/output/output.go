package output

import (
	"context"

	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/observability"
)

// Output defines the interface for table destinations. Begin is called once
// with the column names before any Write; Close ends the table.
type Output interface {
	Begin(ctx context.Context, header []string) error
	Write(ctx context.Context, row model.Row) error
	Close() error
}

// Counted wraps out so that each successful Write is recorded under name.
func Counted(name string, out Output) Output {
	return &counted{name: name, Output: out}
}

type counted struct {
	name string
	Output
}

func (c *counted) Write(ctx context.Context, row model.Row) error {
	if err := c.Output.Write(ctx, row); err != nil {
		return err
	}
	observability.RecordRowWritten(c.name)
	return nil
}
