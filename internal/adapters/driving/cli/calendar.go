package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/connectors/google/calendar"
	"github.com/custodia-labs/redoffice/internal/core/domain"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage Google Calendar events",
	Long: `List, inspect, create and delete Google Calendar events.

Examples:
  redoffice calendar list --max 10 --from 2026-03-01T00:00:00Z
  redoffice calendar get <event-id>
  redoffice calendar create event.json --send-updates all
  redoffice calendar delete <event-id>`,
}

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	Args:  cobra.NoArgs,
	RunE:  runCalendarList,
}

var calendarGetCmd = &cobra.Command{
	Use:   "get [event-id]",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarGet,
}

var calendarCreateCmd = &cobra.Command{
	Use:   "create [event.json|-]",
	Short: "Create an event from Calendar API event JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarCreate,
}

var calendarDeleteCmd = &cobra.Command{
	Use:   "delete [event-id]",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarDelete,
}

// Flags for calendar commands.
var (
	calendarID          string
	calendarSendUpdates string
	calendarList        calendar.ListOptions
	calendarSummary     bool
)

func init() {
	calendarCmd.PersistentFlags().StringVar(
		&calendarID, "calendar", calendar.DefaultCalendarID, "calendar ID")

	defaults := calendar.DefaultListOptions()
	flags := calendarListCmd.Flags()
	flags.Int64Var(&calendarList.MaxResults, "max", defaults.MaxResults, "maximum events to return")
	flags.StringVar(&calendarList.TimeMin, "from", "", "only events ending after this RFC3339 time")
	flags.StringVar(&calendarList.TimeMax, "to", "", "only events starting before this RFC3339 time")
	flags.StringVar(&calendarList.Query, "query", "", "free text search")
	flags.StringVar(&calendarList.OrderBy, "order-by", "", "startTime or updated")
	flags.BoolVar(&calendarList.ShowDeleted, "show-deleted", defaults.ShowDeleted, "include cancelled events")
	flags.BoolVar(&calendarList.SingleEvents, "single-events", defaults.SingleEvents, "expand recurring events")
	flags.StringVar(&calendarList.PageToken, "page-token", "", "continue a previous listing")
	flags.BoolVar(&calendarSummary, "summary", false, "print compact summaries instead of API objects")

	for _, c := range []*cobra.Command{calendarCreateCmd, calendarDeleteCmd} {
		c.Flags().StringVar(&calendarSendUpdates, "send-updates", "", "all, externalOnly or none")
	}

	calendarCmd.AddCommand(calendarListCmd)
	calendarCmd.AddCommand(calendarGetCmd)
	calendarCmd.AddCommand(calendarCreateCmd)
	calendarCmd.AddCommand(calendarDeleteCmd)
	rootCmd.AddCommand(calendarCmd)
}

// withEvents runs fn with an Events client for a calendar session.
func withEvents(cmd *cobra.Command, fn func(events *calendar.Events) error) error {
	return withSession(cmd, domain.ServiceCalendar, func(a *app, s *domain.Session) error {
		svc, err := google.CalendarFrom(s)
		if err != nil {
			return err
		}
		return fn(calendar.New(svc, a.logger))
	})
}

func runCalendarList(cmd *cobra.Command, _ []string) error {
	return withEvents(cmd, func(events *calendar.Events) error {
		page, err := events.List(cmd.Context(), calendarID, calendarList)
		if err != nil {
			return err
		}
		if calendarSummary {
			return writeJSON(cmd.OutOrStdout(), calendar.SummarizeAll(page))
		}
		return writeJSON(cmd.OutOrStdout(), page)
	})
}

func runCalendarGet(cmd *cobra.Command, args []string) error {
	return withEvents(cmd, func(events *calendar.Events) error {
		event, err := events.Get(cmd.Context(), calendarID, args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), event)
	})
}

func runCalendarCreate(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	var event gcal.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("%w: event JSON: %v", domain.ErrInvalidInput, err)
	}

	return withEvents(cmd, func(events *calendar.Events) error {
		created, err := events.Create(cmd.Context(), calendarID, &event, calendarSendUpdates)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), created)
	})
}

func runCalendarDelete(cmd *cobra.Command, args []string) error {
	return withEvents(cmd, func(events *calendar.Events) error {
		result, err := events.Delete(cmd.Context(), calendarID, args[0], calendarSendUpdates)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	})
}
