package commands

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

// Palette, terminal-friendly 256 colors.
var (
	colorSuccess = lipgloss.Color("42")  // Green
	colorWarning = lipgloss.Color("214") // Orange
	colorError   = lipgloss.Color("196") // Red
	colorMuted   = lipgloss.Color("245") // Light gray
	colorTitle   = lipgloss.Color("63")  // Purple
)

// Styles holds the lipgloss styles used for command output. Plain styles
// render text unchanged.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns colored styles for a terminal, plain ones otherwise.
func NewStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{Title: plain, Success: plain, Warning: plain, Error: plain, Muted: plain}
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Foreground(colorTitle).Bold(true),
		Success: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Error:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// Bucket picks the style for a score bucket.
func (s *Styles) Bucket(b rubric.Bucket) lipgloss.Style {
	switch b {
	case rubric.Perfect:
		return s.Success
	case rubric.Fail:
		return s.Error
	default:
		return s.Warning
	}
}
