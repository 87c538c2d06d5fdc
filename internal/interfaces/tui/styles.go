package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Paleta de la tienda.
var (
	colorPrimary = lipgloss.Color("#E91E63") // fresa
	colorAccent  = lipgloss.Color("#FFF3E0") // vainilla
	colorMuted   = lipgloss.Color("#8D6E63") // chocolate
	colorSuccess = lipgloss.Color("#43A047")
	colorError   = lipgloss.Color("#E53935")
	colorBorder  = lipgloss.Color("#F8BBD0")
)

// Styles estilos compartidos por todas las pantallas.
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Help      lipgloss.Style
	Label     lipgloss.Style
	Box       lipgloss.Style
	Table     table.Styles
}

// DefaultStyles estilos por defecto.
func DefaultStyles() Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(colorAccent).
		Background(colorPrimary).
		Bold(false)

	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorAccent).Background(colorPrimary),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Error:     lipgloss.NewStyle().Foreground(colorError),
		Success:   lipgloss.NewStyle().Foreground(colorSuccess),
		Help:      lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1),
		Label:     lipgloss.NewStyle().Width(16).Foreground(colorMuted),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		Table:     ts,
	}
}
