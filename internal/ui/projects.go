package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

func (a *App) projectsCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects and who is on them",
		Example: `  crewcal projects
  crewcal projects --start=2026-09-01 --end=2026-12-31`,
		RunE: func(_ *cobra.Command, _ []string) error {
			start, end, err := resolveRange(startDate, endDate)
			if err != nil {
				return err
			}

			data, err := loadDataset(a.client(), start, end)
			if err != nil {
				return err
			}

			names := make(map[int64]string, len(data.Subjects))
			for _, s := range data.Subjects {
				names[s.ID] = s.Name
			}

			for _, status := range []plan.ProjectStatus{plan.ProjectActive, plan.ProjectPipeline, plan.ProjectArchived} {
				for _, p := range data.Projects {
					if p.Status != status {
						continue
					}
					colorHeader.Printf("%s", p.Name)
					if status != plan.ProjectActive {
						colorMuted.Printf(" (%s)", status)
					}
					fmt.Println()
					printAssignments(data.Allocations, p.ID, names)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Range end (YYYY-MM-DD)")
	return cmd
}

func printAssignments(allocations []*plan.Allocation, projectID int64, names map[int64]string) {
	found := false
	for _, alloc := range allocations {
		if alloc.ProjectID != projectID {
			continue
		}
		found = true
		fmt.Printf("  %-20s", names[alloc.SubjectID])
		assignmentColor(alloc.Kind).Printf("%s to %s",
			dateutil.FormatDate(alloc.StartDate), dateutil.FormatDate(alloc.EndDate))
		colorMuted.Printf("  %.0f d/w\n", alloc.DaysPerWeek)
	}
	if !found {
		colorMuted.Println("  nobody assigned in range")
	}
}

// assignmentColor picks the lane color for an allocation kind: cyan
// for project work, faint for recurring service lanes.
func assignmentColor(kind plan.AllocationKind) *color.Color {
	if kind == plan.AllocationProject {
		return colorProject
	}
	return colorService
}

func (a *App) markersCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "markers",
		Short: "List calendar markers in a date range",
		Example: `  crewcal markers
  crewcal markers --start=2026-09-01`,
		RunE: func(_ *cobra.Command, _ []string) error {
			start, end, err := resolveRange(startDate, endDate)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			markers, err := a.client().ListMarkers(ctx, api.RangeQuery{Start: start, End: end})
			if err != nil {
				return fmt.Errorf("listing markers: %w", err)
			}
			if len(markers) == 0 {
				fmt.Println("No markers in the specified date range.")
				return nil
			}

			for _, m := range markers {
				fmt.Printf("  %s  ", dateutil.FormatDate(m.Date))
				colorHeader.Printf("%-30s", m.Title)
				colorMuted.Printf("%s\n", m.Kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Range end (YYYY-MM-DD)")
	return cmd
}
