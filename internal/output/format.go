package output

import "fmt"

// Format selects how a table is rendered as text.
type Format string

const (
	TSV   Format = "tsv"
	CSV   Format = "csv"
	Table Format = "table" // aligned, bordered; terminals only
)

// ParseFormat validates s. The empty string selects TSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return TSV, nil
	case TSV, CSV, Table:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want tsv, csv or table)", s)
	}
}

// Delimiter returns the field separator for delimited formats.
func (f Format) Delimiter() rune {
	if f == CSV {
		return ','
	}
	return '\t'
}

// Extension returns the conventional file suffix.
func (f Format) Extension() string {
	if f == CSV {
		return ".csv"
	}
	return ".tsv"
}
