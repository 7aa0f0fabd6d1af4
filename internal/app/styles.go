package app

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
)

// Theme colors (Catppuccin Mocha inspired).
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"} // Green
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
)

// Styles holds the lipgloss styles used by the Print* renderers.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	ID      lipgloss.Style
}

// NewStyles builds styles for w. With color disabled every style renders plain text.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		Success: r.NewStyle().Foreground(colorSuccess),
		Warning: r.NewStyle().Foreground(colorWarning),
		Error:   r.NewStyle().Bold(true).Foreground(colorError),
		Muted:   r.NewStyle().Foreground(colorMuted),
		ID:      r.NewStyle().Bold(true),
	}
}

var titleCaser = cases.Title(language.English)

// CategoryTitle renders a category for humans, e.g. "clock-tree" -> "Clock Tree".
func CategoryTitle(c bringup.Category) string {
	return titleCaser.String(strings.ReplaceAll(c.String(), "-", " "))
}
