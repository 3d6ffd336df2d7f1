// Package calendar implements event operations on the Google Calendar API.
package calendar

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// DefaultCalendarID is the authenticated user's primary calendar.
const DefaultCalendarID = "primary"

// ListOptions holds optional parameters for listing events.
type ListOptions struct {
	// MaxResults is the page size. Zero leaves the API default.
	MaxResults int64
	// TimeMin and TimeMax bound event end and start times (RFC3339).
	TimeMin string
	TimeMax string
	// Query is a free text search.
	Query string
	// OrderBy is "startTime" or "updated". startTime requires SingleEvents.
	OrderBy string
	// ShowDeleted includes cancelled events.
	ShowDeleted bool
	// SingleEvents expands recurring events into instances.
	SingleEvents bool
	// PageToken continues a previous listing.
	PageToken string
}

// DefaultListOptions returns the default listing options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		MaxResults:   250,
		SingleEvents: true, // Expand recurring events so times are concrete
	}
}

// DeleteResult reports a deleted event.
type DeleteResult struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}

// Events performs event operations for one session.
type Events struct {
	svc    *calendar.Service
	logger driven.Logger
}

// New creates an Events client.
func New(svc *calendar.Service, logger driven.Logger) *Events {
	if logger == nil {
		logger = driven.NopLogger{}
	}
	return &Events{svc: svc, logger: logger}
}

// List returns one page of events from a calendar.
func (e *Events) List(ctx context.Context, calendarID string, opts ListOptions) (*calendar.Events, error) {
	call := e.svc.Events.List(calendarIDOrDefault(calendarID)).
		ShowDeleted(opts.ShowDeleted).
		SingleEvents(opts.SingleEvents)

	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.TimeMin != "" {
		call = call.TimeMin(opts.TimeMin)
	}
	if opts.TimeMax != "" {
		call = call.TimeMax(opts.TimeMax)
	}
	if opts.Query != "" {
		call = call.Q(opts.Query)
	}
	if opts.OrderBy != "" {
		call = call.OrderBy(opts.OrderBy)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}

	events, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", google.WrapError(err))
	}
	return events, nil
}

// Get returns a single event.
func (e *Events) Get(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	event, err := e.svc.Events.Get(calendarIDOrDefault(calendarID), eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, google.WrapError(err))
	}
	return event, nil
}

// Create inserts an event. sendUpdates is "all", "externalOnly", "none" or empty.
func (e *Events) Create(
	ctx context.Context,
	calendarID string,
	event *calendar.Event,
	sendUpdates string,
) (*calendar.Event, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: event is required", domain.ErrInvalidInput)
	}
	if event.Start == nil || event.End == nil {
		return nil, fmt.Errorf("%w: event needs start and end", domain.ErrInvalidInput)
	}

	call := e.svc.Events.Insert(calendarIDOrDefault(calendarID), event)
	if sendUpdates != "" {
		call = call.SendUpdates(sendUpdates)
	}
	created, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create event: %w", google.WrapError(err))
	}

	e.logger.Info("Created event %s", created.Id)
	return created, nil
}

// Delete removes an event.
func (e *Events) Delete(ctx context.Context, calendarID, eventID, sendUpdates string) (*DeleteResult, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}

	call := e.svc.Events.Delete(calendarIDOrDefault(calendarID), eventID)
	if sendUpdates != "" {
		call = call.SendUpdates(sendUpdates)
	}
	if err := call.Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("delete event %s: %w", eventID, google.WrapError(err))
	}

	e.logger.Warn("Event with ID %s deleted", eventID)
	return &DeleteResult{Status: "Deleted", EventID: eventID}, nil
}

func calendarIDOrDefault(id string) string {
	if id == "" {
		return DefaultCalendarID
	}
	return id
}
