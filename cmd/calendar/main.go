/*
main.go - Calendar CLI

PURPOSE:
  Command-line surface over the scheduling engine, mirroring the calendar
  UI's buttons: select dates, cycle a period mode, clear, submit the routed
  workflow, and submit a week for approval. Useful for exercising the engine
  against a running approval API without a browser.

COMMANDS:
  month    Render the month grid with selection/conflict marks
  request  Submit an off/remote/onsite/time request from selected dates
  cancel   Cancel a pending request
  week     Week-submission status and submit

EXAMPLES:
  calendar month --year 2024 --month 6
  calendar request off --date 2024-06-10 --absence-type vac-1 --reason "Family event"
  calendar request remote --date 2024-06-10 --date 2024-06-12 --reason "Focus sprint"
  calendar request time --date 2024-06-10 --time-type LATE_ARRIVAL --start 09:30 --end 17:00 --reason Dentist
  calendar week submit --week 2024-06-10
*/
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/schedule-engine/apiclient"
	"github.com/warp/schedule-engine/schedule"
)

var (
	serverURL string
	userID    string
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Request-calendar client",
		Long:  "Drives the request-calendar scheduling engine against an approval API.",
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "approval API base URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "demo-user", "requester user id")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(requestCmd())
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(weekCmd())
	rootCmd.AddCommand(typesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newClient() *apiclient.Client {
	logger := zap.NewNop()
	if verbose {
		logger, _ = zap.NewDevelopment()
	}
	return apiclient.New(serverURL, schedule.UserID(userID), logger)
}

// =============================================================================
// MONTH VIEW
// =============================================================================

func monthCmd() *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Render the month grid with conflict marks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			requests, err := client.ListMyRequests(context.Background(), schedule.RequestFilters{
				Year:  year,
				Month: time.Month(month),
			})
			if err != nil {
				return err
			}

			sel := schedule.NewSelection()
			cells := schedule.NewCellStore(sel)
			token := cells.BeginLoad(year, time.Month(month))
			cells.ApplyLoad(token, requests)

			renderGrid(cmd, cells, year, time.Month(month))
			return nil
		},
	}
	now := time.Now()
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month (1-12)")
	return cmd
}

func renderGrid(cmd *cobra.Command, cells *schedule.CellStore, year int, month time.Month) {
	cmd.Printf("%s %d\n", month, year)
	cmd.Println("Mon        Tue        Wed        Thu        Fri        Sat        Sun")

	states := cells.GridStates(year, month)
	for i, s := range states {
		cell := "  " + string(s.Date[8:]) // day-of-month
		if !s.Date.InMonth(year, month) {
			cell = "   ."
		}
		switch {
		case s.HasConflict:
			cell += "!"
		case len(s.CoveringRequests) > 0:
			cell += "*"
		default:
			cell += " "
		}
		cmd.Printf("%-11s", cell)
		if (i+1)%7 == 0 {
			cmd.Println()
		}
	}
	cmd.Println("(* request, ! conflict)")
}

// =============================================================================
// REQUEST SUBMISSION
// =============================================================================

func requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Submit a request from selected dates",
	}
	cmd.AddCommand(offCmd(), remoteCmd(), onsiteCmd(), timeCmd())
	return cmd
}

// selectDates replays the date clicks through the selection engine and
// returns the resulting selection.
func selectDates(dates []string, rt schedule.RequestType) (*schedule.Selection, error) {
	sel := schedule.NewSelection()
	engine := schedule.NewSelectionEngine(sel, schedule.NewCellStore(sel))
	for _, raw := range dates {
		d, err := schedule.ParseDay(raw)
		if err != nil {
			return nil, err
		}
		engine.ToggleDate(d, rt)
	}
	if sel.IsEmpty() {
		return nil, fmt.Errorf("at least one --date is required")
	}
	return sel, nil
}

func parsePeriod(s string) (schedule.PeriodType, error) {
	p := schedule.PeriodType(strings.ToUpper(s))
	if !p.Valid() || p == schedule.PeriodTime {
		return "", fmt.Errorf("period must be FULL_DAY, MORNING or AFTERNOON")
	}
	return p, nil
}

func submit(cmd *cobra.Command, dto schedule.CreateRequestDTO, err error) error {
	if err != nil {
		return err
	}
	created, err := newClient().CreateRequest(context.Background(), dto)
	if err != nil {
		if schedule.IsConflict(err) {
			cmd.Printf("Not submitted: %v\n", err)
			return nil
		}
		return err
	}
	cmd.Printf("Created %s: %s %s %s..%s (%s)\n",
		created.ID, created.RequestType, created.PeriodType,
		created.StartDate, created.EndDate, created.Status)
	return nil
}

func offCmd() *cobra.Command {
	var dates []string
	var period, absenceType, reason, note string
	cmd := &cobra.Command{
		Use:   "off",
		Short: "Submit a leave request",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selectDates(dates, schedule.RequestOff)
			if err != nil {
				return err
			}
			mode, err := parsePeriod(period)
			if err != nil {
				return err
			}
			dto, err := schedule.BuildOffRequest(sel, mode, schedule.OffForm{
				AbsenceTypeID: absenceType,
				Reason:        reason,
				Note:          note,
			})
			return submit(cmd, dto, err)
		},
	}
	cmd.Flags().StringArrayVar(&dates, "date", nil, "selected day (repeatable)")
	cmd.Flags().StringVar(&period, "period", "FULL_DAY", "FULL_DAY, MORNING or AFTERNOON")
	cmd.Flags().StringVar(&absenceType, "absence-type", "", "absence type id")
	cmd.Flags().StringVar(&reason, "reason", "", "reason (min 5 chars)")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	return cmd
}

func remoteCmd() *cobra.Command {
	var dates []string
	var period, project, reason, note string
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Submit a remote-work request",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selectDates(dates, schedule.RequestRemote)
			if err != nil {
				return err
			}
			mode, err := parsePeriod(period)
			if err != nil {
				return err
			}
			dto, err := schedule.BuildRemoteRequest(sel, mode, schedule.RemoteForm{
				ProjectID: project,
				Reason:    reason,
				Note:      note,
			})
			return submit(cmd, dto, err)
		},
	}
	cmd.Flags().StringArrayVar(&dates, "date", nil, "selected day (repeatable)")
	cmd.Flags().StringVar(&period, "period", "FULL_DAY", "FULL_DAY, MORNING or AFTERNOON")
	cmd.Flags().StringVar(&project, "project", "", "optional project id")
	cmd.Flags().StringVar(&reason, "reason", "", "reason (min 5 chars)")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	return cmd
}

func onsiteCmd() *cobra.Command {
	var dates []string
	var period, project, location, reason, note string
	cmd := &cobra.Command{
		Use:   "onsite",
		Short: "Submit an onsite-work request",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selectDates(dates, schedule.RequestOnsite)
			if err != nil {
				return err
			}
			mode, err := parsePeriod(period)
			if err != nil {
				return err
			}
			dto, err := schedule.BuildOnsiteRequest(sel, mode, schedule.OnsiteForm{
				ProjectID: project,
				Location:  location,
				Reason:    reason,
				Note:      note,
			})
			return submit(cmd, dto, err)
		},
	}
	cmd.Flags().StringArrayVar(&dates, "date", nil, "selected day (repeatable)")
	cmd.Flags().StringVar(&period, "period", "FULL_DAY", "FULL_DAY, MORNING or AFTERNOON")
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&location, "location", "", "onsite location")
	cmd.Flags().StringVar(&reason, "reason", "", "reason (min 5 chars)")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	return cmd
}

func timeCmd() *cobra.Command {
	var date, timeType, start, end, reason, note string
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Submit a late-arrival/early-departure adjustment",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := schedule.ParseDay(date)
			if err != nil {
				return err
			}
			dto, err := schedule.BuildTimeRequest(d, schedule.TimeForm{
				TimeType:  schedule.TimeType(strings.ToUpper(timeType)),
				StartTime: start,
				EndTime:   end,
				Reason:    reason,
				Note:      note,
			})
			return submit(cmd, dto, err)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "the day (single-day only)")
	cmd.Flags().StringVar(&timeType, "time-type", "", "LATE_ARRIVAL or EARLY_DEPARTURE")
	cmd.Flags().StringVar(&start, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "end time HH:MM")
	cmd.Flags().StringVar(&reason, "reason", "", "reason")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	return cmd
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <request-id>",
		Short: "Cancel a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteRequest(context.Background(), schedule.RequestID(args[0])); err != nil {
				return err
			}
			cmd.Println("Cancelled", args[0])
			return nil
		},
	}
}

// =============================================================================
// WEEK SUBMISSION
// =============================================================================

func weekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Week-submission status and submit",
	}

	var statusWeek string
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the week's submission status",
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, err := parseWeek(statusWeek)
			if err != nil {
				return err
			}
			coord := schedule.NewWeekCoordinator(newClient())
			status := coord.Refresh(context.Background(), weekStart)
			cmd.Printf("Week %s: %s (edits locked: %v)\n", weekStart, status, coord.Locked(weekStart))
			return nil
		},
	}
	statusCmd.Flags().StringVar(&statusWeek, "week", "", "any day of the week, or its Monday")

	var submitWeek string
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the week for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, err := parseWeek(submitWeek)
			if err != nil {
				return err
			}
			coord := schedule.NewWeekCoordinator(newClient())
			coord.Refresh(context.Background(), weekStart)

			sub, err := coord.Submit(context.Background(), weekStart)
			if err != nil {
				if schedule.IsConflict(err) {
					// Informational, not fatal: the envelope already exists.
					cmd.Printf("Week %s was already submitted (status %s)\n",
						weekStart, coord.Status(weekStart))
					return nil
				}
				return err
			}
			cmd.Printf("Submitted week %s (%s)\n", sub.WeekStart, sub.Status)
			return nil
		},
	}
	submitCmd.Flags().StringVar(&submitWeek, "week", "", "any day of the week, or its Monday")

	cmd.AddCommand(statusCmd, submitCmd)
	return cmd
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the absence types leave requests can use",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := newClient().ListAbsenceTypes(context.Background())
			if err != nil {
				return err
			}
			for _, t := range types {
				pay := "unpaid"
				if t.Paid {
					pay = "paid"
				}
				cmd.Printf("%-8s %-18s %s", t.ID, t.Name, pay)
				if t.MaxDaysPerRequest > 0 {
					cmd.Printf(", max %d days/request", t.MaxDaysPerRequest)
				}
				if t.RequiresNoteOverDays >= 0 {
					cmd.Printf(", note required over %d days", t.RequiresNoteOverDays)
				}
				cmd.Println()
			}
			return nil
		},
	}
}

func parseWeek(raw string) (schedule.Day, error) {
	d, err := schedule.ParseDay(raw)
	if err != nil {
		return "", err
	}
	return schedule.WeekStart(d), nil
}
