package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/summary"
)

func (a *App) peopleCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:     "people",
		Aliases: []string{"subjects"},
		Short:   "Show utilization per person",
		Long: `Show each person's committed days, leave, and free days over a
date range.

Without flags the range covers the current month. Over 100% means the
person has overlapping lanes in the period.`,
		Example: `  crewcal people
  crewcal people --start=2026-09-01 --end=2026-09-30`,
		RunE: func(_ *cobra.Command, _ []string) error {
			start, end, err := resolveRange(startDate, endDate)
			if err != nil {
				return err
			}

			data, err := loadDataset(a.client(), start, end)
			if err != nil {
				return err
			}

			s := summary.Summarize(data, start, end)
			if len(s.Subjects) == 0 {
				fmt.Println("No people found.")
				return nil
			}

			colorHeader.Printf("%s to %s (%d days)\n\n",
				dateutil.FormatDate(s.Start), dateutil.FormatDate(s.End), s.Days)
			for _, u := range s.Subjects {
				pct := colorOK
				if u.UtilizationPct > 100 {
					pct = colorOver
				}
				fmt.Printf("  %-20s", u.Subject.Name)
				pct.Printf("%5.0f%%", u.UtilizationPct)
				fmt.Printf("  %3d committed", u.AllocatedDays)
				colorLeave.Printf("  %3d leave", u.LeaveDays)
				colorMuted.Printf("  %3d free  %d projects\n", u.FreeDays, u.ProjectCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Range end (YYYY-MM-DD)")
	return cmd
}

// resolveRange parses the optional flag dates, defaulting to the
// current month.
func resolveRange(startDate, endDate string) (time.Time, time.Time, error) {
	now := time.Now()
	start := dateutil.StartOfMonth(now)
	end := dateutil.EndOfMonth(now)

	var err error
	if startDate != "" {
		if start, err = dateutil.ParseDate(startDate); err != nil {
			return start, end, fmt.Errorf("parsing --start: %w", err)
		}
		end = dateutil.EndOfMonth(start)
	}
	if endDate != "" {
		if end, err = dateutil.ParseDate(endDate); err != nil {
			return start, end, fmt.Errorf("parsing --end: %w", err)
		}
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("--end is before --start")
	}
	return start, end, nil
}

// loadDataset fetches everything needed to summarize a range.
func loadDataset(client *api.Client, start, end time.Time) (grid.Dataset, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var data grid.Dataset
	var err error
	if data.Subjects, err = client.ListSubjects(ctx); err != nil {
		return data, fmt.Errorf("listing people: %w", err)
	}
	if data.Projects, err = client.ListProjects(ctx); err != nil {
		return data, fmt.Errorf("listing projects: %w", err)
	}
	q := api.RangeQuery{Start: start, End: end}
	if data.Allocations, err = client.ListAllocations(ctx, q); err != nil {
		return data, fmt.Errorf("listing allocations: %w", err)
	}
	if data.Leave, err = client.ListLeave(ctx, q); err != nil {
		return data, fmt.Errorf("listing leave: %w", err)
	}
	if data.Markers, err = client.ListMarkers(ctx, q); err != nil {
		return data, fmt.Errorf("listing markers: %w", err)
	}
	return data, nil
}
