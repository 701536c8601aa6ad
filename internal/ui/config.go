package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvilla/crewcal/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration in effect: defaults, overlaid by the
config file if one exists, overlaid by CREWCAL_* environment variables.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := config.DefaultConfigPath()
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Config file: %s\n\n", path)
			} else {
				colorMuted.Printf("Config file: %s (not present, using defaults)\n\n", path)
			}

			c := a.config
			colorHeader.Println("[api]")
			fmt.Printf("  base_url = %q\n", c.API.BaseURL)
			if c.API.Token != "" {
				fmt.Println("  token    = (set)")
			}
			colorHeader.Println("[ui]")
			fmt.Printf("  theme        = %q\n", c.UI.Theme)
			fmt.Printf("  column_width = %d\n", c.UI.ColumnWidth)
			fmt.Printf("  role         = %q\n", c.UI.Role)
			colorHeader.Println("[window]")
			fmt.Printf("  months_before = %d\n", c.Window.MonthsBefore)
			fmt.Printf("  months_after  = %d\n", c.Window.MonthsAfter)
			colorHeader.Println("[serve]")
			fmt.Printf("  listen  = %q\n", c.Serve.Listen)
			fmt.Printf("  db_path = %q\n", c.Serve.DBPath)
			return nil
		},
	}
}
