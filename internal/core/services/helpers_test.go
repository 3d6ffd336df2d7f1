package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redoffice/internal/adapters/driven/crypto/nacl"
	"github.com/custodia-labs/redoffice/internal/adapters/driven/storage/encfile"
	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
	"github.com/custodia-labs/redoffice/internal/logger"
)

const testCredentialJSON = `{"installed":{"client_id":"cid","client_secret":"csecret",` +
	`"auth_uri":"https://auth.example/auth","token_uri":"https://auth.example/token",` +
	`"redirect_uris":["http://localhost"]}}`

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeProvider parses credentials the way Google's client-secret format is
// laid out and delegates refresh to refreshFn.
type fakeProvider struct {
	mu           sync.Mutex
	refreshFn    func(tok *domain.Token) (*domain.Token, error)
	refreshCalls int
}

func (p *fakeProvider) ParseClientCredential(data []byte) (*domain.ClientCredential, error) {
	type block struct {
		ClientID     string   `json:"client_id"`
		ClientSecret string   `json:"client_secret"`
		AuthURI      string   `json:"auth_uri"`
		TokenURI     string   `json:"token_uri"`
		RedirectURIs []string `json:"redirect_uris"`
	}
	var raw struct {
		Installed *block `json:"installed"`
		Web       *block `json:"web"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	b := raw.Installed
	if b == nil {
		b = raw.Web
	}
	if b == nil {
		return nil, errors.New("no credentials found")
	}
	return &domain.ClientCredential{
		ClientID:     b.ClientID,
		ClientSecret: b.ClientSecret,
		AuthURL:      b.AuthURI,
		TokenURL:     b.TokenURI,
		RedirectURIs: b.RedirectURIs,
	}, nil
}

func (p *fakeProvider) Refresh(_ context.Context, tok *domain.Token) (*domain.Token, error) {
	p.mu.Lock()
	p.refreshCalls++
	fn := p.refreshFn
	p.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected refresh")
	}
	return fn(tok)
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshCalls
}

type fakeAuthorizer struct {
	token     *domain.Token
	err       error
	calls     int
	gotClient *domain.ClientCredential
	gotScopes domain.ScopeSet
}

func (a *fakeAuthorizer) Authorize(
	_ context.Context,
	client *domain.ClientCredential,
	scopes domain.ScopeSet,
) (*domain.Token, error) {
	a.calls++
	a.gotClient = client
	a.gotScopes = scopes
	if a.err != nil {
		return nil, a.err
	}
	return a.token.Clone(), nil
}

// failingStore lets reads through and fails every write.
type failingStore struct {
	driven.SecretStore
	writes int
}

func (s *failingStore) Write(domain.SecretKind, domain.Service, []byte, domain.SymmetricKey) error {
	s.writes++
	return fmt.Errorf("%w: disk full", domain.ErrPersistenceFailed)
}

type harness struct {
	service      domain.Service
	key          domain.SymmetricKey
	store        *encfile.Store
	materializer *encfile.Materializer
	tempDir      string
	provider     *fakeProvider
	authorizer   *fakeAuthorizer
	logs         *bytes.Buffer
	manager      *TokenManager
}

func newHarness(t *testing.T, service domain.Service) *harness {
	t.Helper()

	codec := nacl.NewCodec()
	store, err := encfile.NewStore(filepath.Join(t.TempDir(), "secrets"), codec)
	require.NoError(t, err)
	tempDir := t.TempDir()

	key, err := domain.GenerateKey()
	require.NoError(t, err)

	h := &harness{
		service:      service,
		key:          key,
		store:        store,
		materializer: encfile.NewMaterializer(store, codec, tempDir),
		tempDir:      tempDir,
		provider:     &fakeProvider{},
		authorizer:   &fakeAuthorizer{},
		logs:         &bytes.Buffer{},
	}
	h.manager = h.newManager(store)
	return h
}

func (h *harness) newManager(store driven.SecretStore) *TokenManager {
	m := NewTokenManager(h.service, h.key, store, h.materializer, h.provider, h.authorizer, logger.New(h.logs, true))
	m.now = func() time.Time { return testNow }
	return m
}

func (h *harness) storeCredential(t *testing.T) {
	t.Helper()
	require.NoError(t, h.store.Write(domain.KindCredential, h.service, []byte(testCredentialJSON), h.key))
}

func (h *harness) storeToken(t *testing.T, tok *domain.Token, key domain.SymmetricKey) {
	t.Helper()
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, h.store.Write(domain.KindToken, h.service, data, key))
}

func (h *harness) storedToken(t *testing.T) *domain.Token {
	t.Helper()
	var tok domain.Token
	err := h.materializer.WithPlaintext(domain.KindToken, h.service, h.key, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &tok)
	})
	require.NoError(t, err)
	return &tok
}

// assertNoPlaintext checks that no decrypted file outlived its operation.
func (h *harness) assertNoPlaintext(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func testToken(service domain.Service, access string, expiry time.Time) *domain.Token {
	return &domain.Token{
		AccessToken:  access,
		RefreshToken: "refresh-" + access,
		TokenType:    "Bearer",
		TokenURI:     "https://auth.example/token",
		ClientID:     "cid",
		ClientSecret: "csecret",
		Scopes:       service.Scopes(),
		Expiry:       expiry,
	}
}
