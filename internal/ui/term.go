package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the CLI output.
var (
	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Project allocations: cyan
	colorProject = color.New(color.FgCyan)

	// Service lanes: dim/grey for recurring work
	colorService = color.New(color.FgWhite, color.Faint)

	// Leave: magenta to stand apart from work
	colorLeave = color.New(color.FgMagenta)

	// Over-committed people: red
	colorOver = color.New(color.FgRed, color.Bold)

	// Healthy utilization: green
	colorOK = color.New(color.FgGreen)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}
