package calendar

import (
	"strings"

	"google.golang.org/api/calendar/v3"
)

// Summary is a compact view of an event for listings.
type Summary struct {
	ID               string   `json:"id"`
	Title            string   `json:"title,omitempty"`
	Start            string   `json:"start,omitempty"`
	End              string   `json:"end,omitempty"`
	Location         string   `json:"location,omitempty"`
	Status           string   `json:"status,omitempty"`
	Organiser        string   `json:"organiser,omitempty"`
	Attendees        []string `json:"attendees,omitempty"`
	HTMLLink         string   `json:"html_link,omitempty"`
	RecurringEventID string   `json:"recurring_event_id,omitempty"`
}

// Summarize converts a Google Calendar event to a Summary.
func Summarize(event *calendar.Event) Summary {
	startTime, endTime := extractEventTimes(event)

	return Summary{
		ID:               event.Id,
		Title:            event.Summary,
		Start:            startTime,
		End:              endTime,
		Location:         event.Location,
		Status:           event.Status,
		Organiser:        getOrganiserEmail(event),
		Attendees:        attendeeNames(event.Attendees),
		HTMLLink:         event.HtmlLink,
		RecurringEventID: recurringParentID(event),
	}
}

// SummarizeAll summarizes every listable event on a page.
func SummarizeAll(events *calendar.Events) []Summary {
	if events == nil {
		return nil
	}
	out := make([]Summary, 0, len(events.Items))
	for _, ev := range events.Items {
		if !isListable(ev) {
			continue
		}
		out = append(out, Summarize(ev))
	}
	return out
}

// Describe renders the human readable parts of an event as text.
func Describe(event *calendar.Event) string {
	var contentParts []string
	if event.Summary != "" {
		contentParts = append(contentParts, event.Summary)
	}
	if event.Description != "" {
		contentParts = append(contentParts, event.Description)
	}
	if event.Location != "" {
		contentParts = append(contentParts, "Location: "+event.Location)
	}

	if names := attendeeNames(event.Attendees); len(names) > 0 {
		contentParts = append(contentParts, "Attendees: "+strings.Join(names, ", "))
	}

	return strings.Join(contentParts, "\n\n")
}

// attendeeNames prefers display names and falls back to email.
func attendeeNames(attendees []*calendar.EventAttendee) []string {
	var names []string
	for _, a := range attendees {
		if a.DisplayName != "" {
			names = append(names, a.DisplayName)
		} else if a.Email != "" {
			names = append(names, a.Email)
		}
	}
	return names
}

// extractEventTimes extracts start and end times from an event.
// All-day events only carry a date.
func extractEventTimes(event *calendar.Event) (startTime, endTime string) {
	if event.Start != nil {
		if event.Start.DateTime != "" {
			startTime = event.Start.DateTime
		} else {
			startTime = event.Start.Date
		}
	}
	if event.End != nil {
		if event.End.DateTime != "" {
			endTime = event.End.DateTime
		} else {
			endTime = event.End.Date
		}
	}
	return startTime, endTime
}

// recurringParentID returns the parent id for recurring event instances.
func recurringParentID(event *calendar.Event) string {
	if event.RecurringEventId != "" && event.RecurringEventId != event.Id {
		return event.RecurringEventId
	}
	return ""
}

// getOrganiserEmail extracts the organiser email from an event.
func getOrganiserEmail(event *calendar.Event) string {
	if event.Organizer != nil { //nolint:misspell // Google API field name
		return event.Organizer.Email //nolint:misspell // Google API field name
	}
	return ""
}

func isListable(event *calendar.Event) bool {
	return event != nil && event.Id != ""
}
