package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Color definitions for terminal output
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Status lines go to stderr so they never mix with a table on stdout.
var statusOut io.Writer = os.Stderr

// SetOutput redirects status lines. Used by tests.
func SetOutput(w io.Writer) { statusOut = w }

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	successColor.Fprintf(statusOut, "✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	errorColor.Fprintf(statusOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	warningColor.Fprintf(statusOut, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	infoColor.Fprintf(statusOut, "ℹ %s\n", fmt.Sprintf(format, args...))
}
