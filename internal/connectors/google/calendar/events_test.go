package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/core/domain"
)

func newTestEvents(t *testing.T, handler http.HandlerFunc) *Events {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return New(svc, nil)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestEvents_List(t *testing.T) {
	var query map[string][]string
	events := newTestEvents(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		query = r.URL.Query()
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{"id": "ev1", "summary": "Standup"},
				{"id": "ev2", "summary": "Review"},
			},
		})
	})

	opts := DefaultListOptions()
	opts.MaxResults = 2
	opts.TimeMin = "2026-03-01T00:00:00Z"
	opts.Query = "sync"

	got, err := events.List(context.Background(), "", opts)

	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Standup", got.Items[0].Summary)
	assert.Equal(t, []string{"2"}, query["maxResults"])
	assert.Equal(t, []string{"2026-03-01T00:00:00Z"}, query["timeMin"])
	assert.Equal(t, []string{"sync"}, query["q"])
	assert.Equal(t, []string{"true"}, query["singleEvents"])
}

func TestEvents_Get(t *testing.T) {
	events := newTestEvents(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/team/events/ev1"), r.URL.Path)
		writeJSON(t, w, map[string]any{"id": "ev1", "summary": "Standup"})
	})

	got, err := events.Get(context.Background(), "team", "ev1")

	require.NoError(t, err)
	assert.Equal(t, "ev1", got.Id)
}

func TestEvents_Get_RequiresID(t *testing.T) {
	events := newTestEvents(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := events.Get(context.Background(), "primary", "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEvents_Get_NotFound(t *testing.T) {
	events := newTestEvents(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
	})

	_, err := events.Get(context.Background(), "primary", "missing")

	require.Error(t, err)
	assert.True(t, google.IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, google.StatusCode(err))
}

func TestEvents_Create(t *testing.T) {
	var body calendar.Event
	var sendUpdates string
	events := newTestEvents(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		sendUpdates = r.URL.Query().Get("sendUpdates")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(t, w, map[string]any{"id": "new-1", "summary": body.Summary})
	})

	event := &calendar.Event{
		Summary: "Planning",
		Start:   &calendar.EventDateTime{DateTime: "2026-03-02T09:00:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2026-03-02T10:00:00Z"},
	}

	got, err := events.Create(context.Background(), "primary", event, "all")

	require.NoError(t, err)
	assert.Equal(t, "new-1", got.Id)
	assert.Equal(t, "Planning", body.Summary)
	assert.Equal(t, "all", sendUpdates)
}

func TestEvents_Create_Validation(t *testing.T) {
	events := newTestEvents(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	tests := []struct {
		name  string
		event *calendar.Event
	}{
		{name: "nil event", event: nil},
		{name: "missing end", event: &calendar.Event{Start: &calendar.EventDateTime{Date: "2026-03-02"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := events.Create(context.Background(), "", tt.event, "")
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestEvents_Delete(t *testing.T) {
	events := newTestEvents(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events/ev1"), r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := events.Delete(context.Background(), "primary", "ev1", "")

	require.NoError(t, err)
	assert.Equal(t, &DeleteResult{Status: "Deleted", EventID: "ev1"}, got)
}

func TestEvents_Delete_Forbidden(t *testing.T) {
	events := newTestEvents(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Forbidden"}}`))
	})

	_, err := events.Delete(context.Background(), "primary", "ev1", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, google.ErrForbidden))
}
