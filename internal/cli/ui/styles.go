package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold     lipgloss.Style
	Dim      lipgloss.Style
	Finished lipgloss.Style
	Rejected lipgloss.Style
}{
	Bold:     lipgloss.NewStyle().Bold(true),
	Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Finished: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	Rejected: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}
