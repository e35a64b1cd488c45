// Package ui provides the interactive prompts of the yolocustom menu:
// single choice lists, checkbox lists and text input, all bubbletea models.
package ui

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

// Color palette
var (
	Primary = lipgloss.Color("#8BC34A") // Lime Green
	Muted   = lipgloss.Color("#6b7280")
	Info    = lipgloss.Color("#2196F3") // Blue
	Warning = lipgloss.Color("#FFC107") // Yellow
)

// Styles holds the rendering styles shared by the prompts.
type Styles struct {
	Title    lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the default prompt styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Info),
		Cursor:   lipgloss.NewStyle().Foreground(Primary).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(Primary),
		Item:     lipgloss.NewStyle(),
		Help:     lipgloss.NewStyle().Foreground(Muted),
		Error:    lipgloss.NewStyle().Foreground(Warning),
	}
}
