// Package theme provides color themes for the TUI.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string
	Bg          string // base background
	BgHighlight string // block backgrounds, subtle highlight
	BgSelection string // active gesture preview
	Fg          string // primary foreground
	FgMuted     string // gutter labels, muted elements
	Accent      string // header, borders
	Project     string // project-kind allocations
	Service     string // sla/misc allocations
	Leave       string // approved leave
	LeavePale   string // requested leave
	Marker      string // marker ticks
	Warning     string // toasts for warnings, pending records
	Danger      string // failure toasts
}

var themes = map[string]Theme{
	"dark": {
		Name:        "dark",
		Bg:          "#1e2127",
		BgHighlight: "#2c313a",
		BgSelection: "#3e4452",
		Fg:          "#abb2bf",
		FgMuted:     "#5c6370",
		Accent:      "#61afef",
		Project:     "#98c379",
		Service:     "#c678dd",
		Leave:       "#56b6c2",
		LeavePale:   "#3a5f66",
		Marker:      "#e5c07b",
		Warning:     "#d19a66",
		Danger:      "#e06c75",
	},
	"light": {
		Name:        "light",
		Bg:          "#fafafa",
		BgHighlight: "#e5e5e6",
		BgSelection: "#d0d0d1",
		Fg:          "#383a42",
		FgMuted:     "#a0a1a7",
		Accent:      "#4078f2",
		Project:     "#50a14f",
		Service:     "#a626a4",
		Leave:       "#0184bc",
		LeavePale:   "#b3d9e8",
		Marker:      "#c18401",
		Warning:     "#986801",
		Danger:      "#e45649",
	},
}

// Load returns the named theme. Unknown names fall back to dark.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = "dark"
	}
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		if name != "dark" {
			t = themes["dark"]
			return &t, nil
		}
		return nil, fmt.Errorf("unknown theme %q", name)
	}
	return &t, nil
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"dark", "light"}
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// BlockColor picks the theme color for a record's own color, falling
// back to the default when the record carries none.
func (t *Theme) BlockColor(recordColor, fallback string) lipgloss.Color {
	if recordColor != "" {
		return lipgloss.Color(recordColor)
	}
	return lipgloss.Color(fallback)
}
