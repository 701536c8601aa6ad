package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/config"
	"github.com/mvilla/crewcal/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	root   *cobra.Command
}

// NewApp creates the CLI application with the given config.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg}

	a.root = &cobra.Command{
		Use:   "crewcal",
		Short: "A team capacity calendar for the terminal",
		Long: `Crewcal is a capacity planning calendar for small teams.

Running it with no arguments opens the interactive calendar: drag on a
person's row to block out work or leave, scroll sideways through the
months, and every change syncs with the crewcal server.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return tui.Run(a.config)
		},
	}

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.peopleCmd())
	a.root.AddCommand(a.projectsCmd())
	a.root.AddCommand(a.markersCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("crewcal %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// client builds an API client using the configured base URL and token.
// CLI listings only read, so no anti-forgery handshake is needed.
func (a *App) client() *api.Client {
	var opts []api.Option
	if a.config.API.Token != "" {
		opts = append(opts, api.WithHeaderInjector(api.BearerToken(a.config.API.Token)))
	}
	return api.NewClient(a.config.API.BaseURL, opts...)
}
