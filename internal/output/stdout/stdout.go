package stdout

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/output"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	dateStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Output writes the table to stdout. Delimited formats stream row by row;
// the table format buffers until Close so columns can be aligned.
type Output struct {
	w      io.Writer
	format output.Format
	csv    *csv.Writer
	header []string
	rows   [][]string
}

// New creates a stdout Output in the given format.
func New(format output.Format) *Output {
	return NewWriter(os.Stdout, format)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, format output.Format) *Output {
	o := &Output{w: w, format: format}
	if format != output.Table {
		o.csv = csv.NewWriter(w)
		o.csv.Comma = format.Delimiter()
	}
	return o
}

func (o *Output) Begin(_ context.Context, header []string) error {
	if o.csv == nil {
		o.header = header
		return nil
	}
	if err := o.csv.Write(header); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Write(_ context.Context, row model.Row) error {
	if o.csv == nil {
		o.rows = append(o.rows, row.Strings())
		return nil
	}
	if err := o.csv.Write(row.Strings()); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	// Flush per row so long runs show progress.
	o.csv.Flush()
	return o.csv.Error()
}

func (o *Output) Close() error {
	if o.csv != nil {
		o.csv.Flush()
		return o.csv.Error()
	}
	if _, err := fmt.Fprintln(o.w, Render(o.header, o.rows)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

// Render draws header and rows as a bordered table.
func Render(header []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return dateStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}
