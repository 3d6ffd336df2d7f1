// Package google provides shared infrastructure for the Google API services.
//
// This package contains common utilities used by the calendar, gmail and
// sheets packages including:
//   - Builder, the session builder that turns a lifecycle token into an API client
//   - TokenSource adapter to bridge the token lifecycle to oauth2.TokenSource
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
// Sessions come from the session factory, which hands the validated token
// to Builder:
//
//	session, err := factory.Session(ctx, domain.ServiceCalendar)
//	svc, err := google.CalendarFrom(session)
//
// # OAuth2 Scopes
//
// Each service requests one fixed scope:
//   - https://www.googleapis.com/auth/calendar.events
//   - https://mail.google.com/
//   - https://www.googleapis.com/auth/spreadsheets
package google
