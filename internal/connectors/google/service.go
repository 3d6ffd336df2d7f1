package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.SessionBuilder = (*Builder)(nil)

// Builder creates Google API clients for sessions.
// Every client is authorized by the token lifecycle and rate limited per service.
type Builder struct {
	base    http.RoundTripper
	options []option.ClientOption
}

// NewBuilder creates a session builder. Extra options are appended to
// every client, e.g. option.WithEndpoint in tests.
func NewBuilder(base http.RoundTripper, opts ...option.ClientOption) *Builder {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Builder{base: base, options: opts}
}

// Build implements driven.SessionBuilder.
func (b *Builder) Build(
	ctx context.Context,
	service domain.Service,
	token *domain.Token,
	renew driven.TokenFunc,
) (any, error) {
	client := b.HTTPClient(ctx, service, token, renew)
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, b.options...)

	switch service {
	case domain.ServiceCalendar:
		return NewCalendarService(ctx, opts...)
	case domain.ServiceMail:
		return NewGmailService(ctx, opts...)
	case domain.ServiceSpreadsheet:
		return NewSheetsService(ctx, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedService, service)
	}
}

// HTTPClient returns a client that authorizes requests with the lifecycle's
// token and waits on the service's rate limiter.
func (b *Builder) HTTPClient(
	ctx context.Context,
	service domain.Service,
	token *domain.Token,
	renew driven.TokenFunc,
) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: NewTokenSource(ctx, token, renew),
			Base: &Transport{
				Base:    b.base,
				Limiter: NewRateLimiter(service),
			},
		},
	}
}

// NewGmailService creates a Gmail API service.
func NewGmailService(ctx context.Context, opts ...option.ClientOption) (*gmail.Service, error) {
	return gmail.NewService(ctx, opts...)
}

// NewCalendarService creates a Google Calendar API service.
func NewCalendarService(ctx context.Context, opts ...option.ClientOption) (*calendar.Service, error) {
	return calendar.NewService(ctx, opts...)
}

// NewSheetsService creates a Google Sheets API service.
func NewSheetsService(ctx context.Context, opts ...option.ClientOption) (*sheets.Service, error) {
	return sheets.NewService(ctx, opts...)
}

// CalendarFrom returns the Calendar client held by a session.
func CalendarFrom(s *domain.Session) (*calendar.Service, error) {
	return clientFrom[*calendar.Service](s, domain.ServiceCalendar)
}

// GmailFrom returns the Gmail client held by a session.
func GmailFrom(s *domain.Session) (*gmail.Service, error) {
	return clientFrom[*gmail.Service](s, domain.ServiceMail)
}

// SheetsFrom returns the Sheets client held by a session.
func SheetsFrom(s *domain.Session) (*sheets.Service, error) {
	return clientFrom[*sheets.Service](s, domain.ServiceSpreadsheet)
}

func clientFrom[T any](s *domain.Session, want domain.Service) (T, error) {
	var zero T
	if s == nil || s.Service != want {
		return zero, fmt.Errorf("%w: not a %s session", domain.ErrInvalidInput, want)
	}
	c, ok := s.Client.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s session holds %T", domain.ErrInvalidInput, want, s.Client)
	}
	return c, nil
}
