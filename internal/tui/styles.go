package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mvilla/crewcal/internal/tui/theme"
)

// Styles holds the precomputed lipgloss styles for the grid.
type Styles struct {
	Header      lipgloss.Style
	MonthLabel  lipgloss.Style
	DayLabel    lipgloss.Style
	Today       lipgloss.Style
	SectionName lipgloss.Style
	LaneLabel   lipgloss.Style
	EmptyCell   lipgloss.Style
	Weekend     lipgloss.Style

	BlockProject lipgloss.Style
	BlockService lipgloss.Style
	LeaveBlock   lipgloss.Style
	LeavePending lipgloss.Style
	Pending      lipgloss.Style
	Preview      lipgloss.Style
	EdgeHandle   lipgloss.Style
	MarkerTick   lipgloss.Style

	Menu         lipgloss.Style
	MenuItem     lipgloss.Style
	MenuSelected lipgloss.Style
	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldError   lipgloss.Style

	Status  lipgloss.Style
	Toast   lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles derives the styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	return &Styles{
		Header:      lipgloss.NewStyle().Foreground(theme.Color(t.Accent)).Bold(true),
		MonthLabel:  lipgloss.NewStyle().Foreground(theme.Color(t.Accent)),
		DayLabel:    lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted)),
		Today:       lipgloss.NewStyle().Foreground(theme.Color(t.Marker)).Bold(true),
		SectionName: lipgloss.NewStyle().Foreground(theme.Color(t.Fg)).Bold(true),
		LaneLabel:   lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted)),
		EmptyCell:   lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted)),
		Weekend:     lipgloss.NewStyle().Foreground(theme.Color(t.BgHighlight)),

		BlockProject: lipgloss.NewStyle().
			Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Project)),
		BlockService: lipgloss.NewStyle().
			Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Service)),
		LeaveBlock: lipgloss.NewStyle().
			Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Leave)),
		LeavePending: lipgloss.NewStyle().
			Foreground(theme.Color(t.Fg)).Background(theme.Color(t.LeavePale)),
		Pending: lipgloss.NewStyle().
			Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Warning)),
		Preview: lipgloss.NewStyle().
			Foreground(theme.Color(t.Fg)).Background(theme.Color(t.BgSelection)),
		EdgeHandle: lipgloss.NewStyle().
			Foreground(theme.Color(t.Accent)).Bold(true),
		MarkerTick: lipgloss.NewStyle().Foreground(theme.Color(t.Marker)).Bold(true),

		Menu: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Color(t.Accent)).
			Padding(0, 1),
		MenuItem:     lipgloss.NewStyle().Foreground(theme.Color(t.Fg)),
		MenuSelected: lipgloss.NewStyle().Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Accent)),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Color(t.Accent)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().Foreground(theme.Color(t.Accent)).Bold(true),
		FieldLabel: lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted)),
		FieldError: lipgloss.NewStyle().Foreground(theme.Color(t.Danger)),

		Status:  lipgloss.NewStyle().Foreground(theme.Color(t.Fg)),
		Toast:   lipgloss.NewStyle().Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Accent)).Padding(0, 1),
		Warning: lipgloss.NewStyle().Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Warning)).Padding(0, 1),
		Danger:  lipgloss.NewStyle().Foreground(theme.Color(t.Bg)).Background(theme.Color(t.Danger)).Padding(0, 1),
		Help:    lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted)),
	}
}
