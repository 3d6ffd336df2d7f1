package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

func writeClientSecret(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path, []byte(testClientJSON), 0o600))
	return path
}

func TestInitCred_GeneratesKey(t *testing.T) {
	env := setupTest(t, nil)
	path := writeClientSecret(t)

	out, code := runCLI(t, "init-cred", path)
	require.Equal(t, 0, code, out)

	result := decode[initCredOutput](t, out)
	assert.Equal(t, domain.InitSuccess, result.Status)
	assert.Equal(t, domain.AllServices(), result.Services)

	key, err := domain.ParseKey(result.Key)
	require.NoError(t, err)
	for _, svc := range domain.AllServices() {
		assert.True(t, env.store.Exists(domain.KindCredential, svc))
	}
	assert.NotEqual(t, env.key, key)
}

func TestInitCred_ReusesSuppliedKeyForSelectedServices(t *testing.T) {
	env := setupTest(t, nil)
	path := writeClientSecret(t)

	out, code := env.run("init-cred", path, "--service", "calendar,sheets")
	require.Equal(t, 0, code, out)

	result := decode[initCredOutput](t, out)
	assert.Equal(t, env.key.String(), result.Key)
	assert.Equal(t, []domain.Service{domain.ServiceCalendar, domain.ServiceSpreadsheet}, result.Services)
	assert.False(t, env.store.Exists(domain.KindCredential, domain.ServiceMail))
}

func TestInitCred_InvalidJSON(t *testing.T) {
	setupTest(t, nil)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	out, code := runCLI(t, "init-cred", path)
	assert.Equal(t, 1, code)

	report := decode[domain.ErrorReport](t, out)
	assert.Equal(t, "InvalidInput", report.Status)
	assert.Equal(t, "init-cred", report.FunctionName)
}

func TestInitCred_UnknownService(t *testing.T) {
	setupTest(t, nil)
	path := writeClientSecret(t)

	out, code := runCLI(t, "init-cred", path, "--service", "drive")
	assert.Equal(t, 1, code)
	assert.Equal(t, "UnsupportedService", decode[domain.ErrorReport](t, out).Status)
}

func TestAuthLogin(t *testing.T) {
	env := setupTest(t, nil)

	out, code := env.run("auth", "login", "gmail")
	require.Equal(t, 0, code, out)

	result := decode[authLoginOutput](t, out)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, domain.ServiceMail, result.Service)
	assert.Equal(t, []string(domain.ServiceMail.Scopes()), result.Scopes)
	assert.NotNil(t, result.Expiry)
	assert.Equal(t, []domain.TokenState{domain.StateLoaded, domain.StateValid}, result.Trace)
	assert.Equal(t, 1, env.tokens.tokenCalls)
	assert.Zero(t, env.tokens.reauthCalls)
	assert.NotContains(t, out, "access-cli")
	assert.NotContains(t, out, "refresh-cli")
}

func TestAuthLogin_Force(t *testing.T) {
	env := setupTest(t, nil)

	out, code := env.run("auth", "login", "calendar", "--force")
	require.Equal(t, 0, code, out)

	assert.Equal(t, 1, env.tokens.reauthCalls)
	assert.Zero(t, env.tokens.tokenCalls)
	assert.Contains(t, decode[authLoginOutput](t, out).Trace, domain.StateReAuthorized)
}

func TestAuthLogin_FailureReport(t *testing.T) {
	env := setupTest(t, nil)
	env.tokens.err = domain.ErrAuthorizationFailed

	out, code := env.run("auth", "login", "calendar")
	assert.Equal(t, 1, code)

	report := decode[domain.ErrorReport](t, out)
	assert.Equal(t, "AuthorizationFailed", report.Status)
	assert.Equal(t, "auth login", report.FunctionName)
}

func TestAuthStatus(t *testing.T) {
	env := setupTest(t, nil)

	out, code := env.run("auth", "status")
	require.Equal(t, 0, code, out)

	entries := decode[[]authStatusEntry](t, out)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.AllServices(), []domain.Service{
		entries[0].Service, entries[1].Service, entries[2].Service,
	})
	for _, e := range entries {
		assert.Equal(t, domain.StateValid, e.State)
		assert.True(t, e.HasRefreshToken)
	}
	assert.Zero(t, env.tokens.tokenCalls)
}

func TestAuthStatus_SelectedService(t *testing.T) {
	env := setupTest(t, nil)
	env.tokens.token = nil
	env.tokens.state = domain.StateNoToken

	out, code := env.run("auth", "status", "sheets")
	require.Equal(t, 0, code, out)

	entries := decode[[]authStatusEntry](t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ServiceSpreadsheet, entries[0].Service)
	assert.Equal(t, domain.StateNoToken, entries[0].State)
	assert.Nil(t, entries[0].Expiry)
}

func TestMissingKey(t *testing.T) {
	setupTest(t, nil)

	// go test runs without a terminal on stdin, so no prompt is shown.
	out, code := runCLI(t, "auth", "login", "calendar")
	assert.Equal(t, 1, code)
	assert.Equal(t, "InvalidKey", decode[domain.ErrorReport](t, out).Status)
}

func TestKeyFromEnvironment(t *testing.T) {
	env := setupTest(t, nil)
	t.Setenv(KeyEnv, env.key.String())

	out, code := runCLI(t, "auth", "login", "calendar")
	require.Equal(t, 0, code, out)
}

func TestCalendarList(t *testing.T) {
	env := setupTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/team@example.com/events"), r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "standup", r.URL.Query().Get("q"))
		writeAPIJSON(w, http.StatusOK, `{"items":[
			{"id":"e1","summary":"Standup","start":{"dateTime":"2026-03-02T09:00:00Z"},"end":{"dateTime":"2026-03-02T09:15:00Z"}}
		]}`)
	})

	out, code := env.run("calendar", "list", "--calendar", "team@example.com",
		"--max", "5", "--query", "standup", "--summary")
	require.Equal(t, 0, code, out)

	assert.Contains(t, out, `"Standup"`)
	assert.Equal(t, []domain.Service{domain.ServiceCalendar}, env.requested)
	require.NotEmpty(t, env.auth)
	assert.Equal(t, "Bearer access-cli", env.auth[0])
}

func TestCalendarDelete(t *testing.T) {
	env := setupTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events/e42"), r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	out, code := env.run("calendar", "delete", "e42")
	require.Equal(t, 0, code, out)

	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Deleted", result["status"])
	assert.Equal(t, "e42", result["event_id"])
}

func TestCalendarGet_NotFoundReportsStatusCode(t *testing.T) {
	env := setupTest(t, func(w http.ResponseWriter, _ *http.Request) {
		writeAPIJSON(w, http.StatusNotFound, `{"error":{"code":404,"message":"Not Found"}}`)
	})

	out, code := env.run("calendar", "get", "missing")
	assert.Equal(t, 1, code)

	report := decode[domain.ErrorReport](t, out)
	assert.Equal(t, http.StatusNotFound, report.StatusCode)
	assert.Equal(t, "calendar get", report.FunctionName)
}

func TestCalendarCreate_InvalidJSONFailsBeforeSession(t *testing.T) {
	env := setupTest(t, nil)
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte("["), 0o600))

	out, code := env.run("calendar", "create", path)
	assert.Equal(t, 1, code)
	assert.Equal(t, "InvalidInput", decode[domain.ErrorReport](t, out).Status)
	assert.Empty(t, env.requested)
}

func TestMailDraft_InvalidRecipientFailsBeforeSession(t *testing.T) {
	env := setupTest(t, nil)

	out, code := env.run("mail", "draft", "--to", "not an address", "--subject", "hi")
	assert.Equal(t, 1, code)
	assert.Equal(t, "InvalidInput", decode[domain.ErrorReport](t, out).Status)
	assert.Empty(t, env.requested)
	assert.Zero(t, env.tokens.tokenCalls)
}

func TestMailDraft(t *testing.T) {
	env := setupTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/drafts"), r.URL.Path)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `"raw"`)
		writeAPIJSON(w, http.StatusOK, `{"id":"d1","message":{"id":"m1"}}`)
	})

	attachment := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(attachment, []byte("notes"), 0o600))

	out, code := env.run("mail", "draft", "--to", "a@example.com", "--subject", "Report",
		"--body", "See attached", "--attach", attachment)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `"d1"`)
	assert.Equal(t, []domain.Service{domain.ServiceMail}, env.requested)
}

func TestMailList(t *testing.T) {
	env := setupTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages"), r.URL.Path)
		assert.Equal(t, []string{"INBOX", "UNREAD"}, r.URL.Query()["labelIds"])
		writeAPIJSON(w, http.StatusOK, `{"messages":[{"id":"m1","threadId":"t1"}],"resultSizeEstimate":1}`)
	})

	out, code := env.run("mail", "list", "--labels", "INBOX,UNREAD")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `"m1"`)
}

func TestSheetsUpdate(t *testing.T) {
	env := setupTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/spreadsheets/sheet-1/values/Sheet1!A1:B2"), r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))

		var body struct {
			Values [][]any `json:"values"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][]any{{"Name", "Score"}, {"Ada", float64(10)}}, body.Values)
		writeAPIJSON(w, http.StatusOK, `{"spreadsheetId":"sheet-1","updatedCells":4}`)
	})

	path := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(path, []byte(`[["Name","Score"],["Ada",10]]`), 0o600))

	out, code := env.run("sheets", "update", "sheet-1", "Sheet1!A1:B2", path, "--input", "RAW")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `"updatedCells": 4`)
	assert.Equal(t, []domain.Service{domain.ServiceSpreadsheet}, env.requested)
}

func TestSheetsUpdate_RateLimitedReportsStatusCode(t *testing.T) {
	env := setupTest(t, func(w http.ResponseWriter, _ *http.Request) {
		writeAPIJSON(w, http.StatusTooManyRequests, `{"error":{"code":429,"message":"Quota exceeded"}}`)
	})

	path := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(path, []byte(`[["x"]]`), 0o600))

	out, code := env.run("spreadsheet", "append", "sheet-1", "Sheet1", path)
	assert.Equal(t, 1, code)

	report := decode[domain.ErrorReport](t, out)
	assert.Equal(t, http.StatusTooManyRequests, report.StatusCode)
	assert.Equal(t, "sheets append", report.FunctionName)
}

func TestFunctionName(t *testing.T) {
	assert.Equal(t, "redoffice", functionName(rootCmd))
	assert.Equal(t, "mail draft", functionName(mailDraftCmd))
	assert.Equal(t, "sheets batch-update", functionName(sheetsBatchUpdateCmd))
}
