package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/custodia-labs/redoffice/internal/adapters/driven/crypto/nacl"
	"github.com/custodia-labs/redoffice/internal/adapters/driven/oauth"
	"github.com/custodia-labs/redoffice/internal/adapters/driven/storage/encfile"
	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
	"github.com/custodia-labs/redoffice/internal/core/ports/driving"
	"github.com/custodia-labs/redoffice/internal/core/services"
)

const testClientJSON = `{"installed":{
	"client_id":"cid",
	"client_secret":"csecret",
	"auth_uri":"https://auth.example/auth",
	"token_uri":"https://auth.example/token",
	"redirect_uris":["http://localhost"]
}}`

// fakeTokenService implements driving.TokenService for testing.
type fakeTokenService struct {
	token       *domain.Token
	err         error
	state       domain.TokenState
	tokenCalls  int
	reauthCalls int
}

func (f *fakeTokenService) Token(context.Context) (*domain.Token, error) {
	f.tokenCalls++
	return f.token, f.err
}

func (f *fakeTokenService) Reauthorize(context.Context) (*domain.Token, error) {
	f.reauthCalls++
	return f.token, f.err
}

func (f *fakeTokenService) Inspect() (*domain.Token, domain.TokenState) {
	return f.token, f.state
}

func (f *fakeTokenService) Trace() []domain.TokenState {
	if f.reauthCalls > 0 {
		return []domain.TokenState{domain.StateReAuthorized, domain.StatePersisted}
	}
	return []domain.TokenState{domain.StateLoaded, domain.StateValid}
}

// testEnv wires the CLI to a real encrypted store, a fake token service and
// an optional fake Google API server.
type testEnv struct {
	t         *testing.T
	store     *encfile.Store
	key       domain.SymmetricKey
	tokens    *fakeTokenService
	requested []domain.Service
	auth      []string
}

func setupTest(t *testing.T, api http.HandlerFunc) *testEnv {
	t.Helper()

	store, err := encfile.NewStore(t.TempDir(), nacl.NewCodec())
	require.NoError(t, err)
	key, err := domain.GenerateKey()
	require.NoError(t, err)

	env := &testEnv{
		t:     t,
		store: store,
		key:   key,
		tokens: &fakeTokenService{
			token: &domain.Token{
				AccessToken:  "access-cli",
				RefreshToken: "refresh-cli",
				Expiry:       time.Now().Add(time.Hour),
			},
			state: domain.StateValid,
		},
	}

	var opts []option.ClientOption
	if api != nil {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			env.auth = append(env.auth, r.Header.Get("Authorization"))
			api(w, r)
		}))
		t.Cleanup(srv.Close)
		opts = append(opts, option.WithEndpoint(srv.URL+"/"))
	}

	oldApp := newApp
	newApp = func(_ *cobra.Command) (*app, error) {
		return &app{
			logger:      driven.NopLogger{},
			credentials: services.NewCredentialService(store, oauth.NewProvider(nil), nil),
			tokens: func(service domain.Service, k domain.SymmetricKey) (driving.TokenService, error) {
				require.Equal(t, key, k)
				env.requested = append(env.requested, service)
				if env.tokens.token != nil {
					env.tokens.token.Scopes = service.Scopes()
				}
				return env.tokens, nil
			},
			builder: google.NewBuilder(nil, opts...),
		}, nil
	}
	t.Cleanup(func() { newApp = oldApp })
	t.Setenv(KeyEnv, "")

	return env
}

// run executes the root command with the env's key and returns stdout and
// the exit code.
func (e *testEnv) run(args ...string) (string, int) {
	e.t.Helper()
	return runCLI(e.t, append([]string{"--key", e.key.String()}, args...)...)
}

func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	code := Execute(context.Background())
	return buf.String(), code
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func writeAPIJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
