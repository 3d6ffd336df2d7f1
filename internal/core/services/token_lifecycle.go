package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
	"github.com/custodia-labs/redoffice/internal/core/ports/driving"
)

// Ensure TokenManager implements the interface.
var _ driving.TokenService = (*TokenManager)(nil)

// TokenManager yields a valid token for one service under one key.
//
// Each call walks load, validate, refresh, re-authorize and persist, in that
// order, taking the first path that produces a valid token. Nothing is retried
// and nothing is locked across processes: concurrent writers race and the
// last one to persist wins.
type TokenManager struct {
	service      domain.Service
	scopes       domain.ScopeSet
	key          domain.SymmetricKey
	store        driven.SecretStore
	materializer driven.Materializer
	provider     driven.OAuthProvider
	authorizer   driven.Authorizer
	logger       driven.Logger
	now          func() time.Time

	mu    sync.Mutex
	trace []domain.TokenState
}

// NewTokenManager creates a token manager for service.
// A nil logger discards output.
func NewTokenManager(
	service domain.Service,
	key domain.SymmetricKey,
	store driven.SecretStore,
	materializer driven.Materializer,
	provider driven.OAuthProvider,
	authorizer driven.Authorizer,
	logger driven.Logger,
) *TokenManager {
	if logger == nil {
		logger = driven.NopLogger{}
	}
	return &TokenManager{
		service:      service,
		scopes:       service.Scopes(),
		key:          key,
		store:        store,
		materializer: materializer,
		provider:     provider,
		authorizer:   authorizer,
		logger:       logger,
		now:          time.Now,
	}
}

// Token returns a token valid at the moment of return.
// A refreshed or re-authorized token is persisted before it is returned.
func (m *TokenManager) Token(ctx context.Context) (*domain.Token, error) {
	if err := m.key.Validate(); err != nil {
		return nil, err
	}
	m.resetTrace()

	tok, state := m.load()
	switch state {
	case domain.StateValid:
		return tok, nil
	case domain.StateExpiredRefreshable:
		fresh, err := m.refresh(ctx, tok)
		if err == nil {
			return m.persist(fresh)
		}
		m.logger.Warn("%s token refresh failed, falling back to authorization: %v", m.service, err)
		m.record(domain.StateUnusable)
	}

	return m.reauthorize(ctx)
}

// Reauthorize runs the interactive flow without looking at the stored token.
func (m *TokenManager) Reauthorize(ctx context.Context) (*domain.Token, error) {
	if err := m.key.Validate(); err != nil {
		return nil, err
	}
	m.resetTrace()
	return m.reauthorize(ctx)
}

// Inspect loads and classifies the stored token. It never refreshes,
// authorizes or writes.
func (m *TokenManager) Inspect() (*domain.Token, domain.TokenState) {
	if !m.store.Exists(domain.KindToken, m.service) {
		return nil, domain.StateNoToken
	}
	tok, err := m.readToken()
	if err != nil {
		return nil, domain.StateNoToken
	}
	return tok, tok.Classify(m.scopes, m.now())
}

// Trace returns the states visited by the most recent Token or Reauthorize call.
func (m *TokenManager) Trace() []domain.TokenState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TokenState(nil), m.trace...)
}

func (m *TokenManager) load() (*domain.Token, domain.TokenState) {
	if !m.store.Exists(domain.KindToken, m.service) {
		m.logger.Debug("no stored %s token at %s", m.service, m.store.Path(domain.KindToken, m.service))
		m.record(domain.StateNoToken)
		return nil, domain.StateNoToken
	}

	tok, err := m.readToken()
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			m.logger.Debug("no stored %s token", m.service)
		} else {
			m.logger.Warn("stored %s token is unusable: %v", m.service, err)
		}
		m.record(domain.StateNoToken)
		return nil, domain.StateNoToken
	}
	m.record(domain.StateLoaded)

	state := tok.Classify(m.scopes, m.now())
	m.logger.Debug("%s token classified as %s", m.service, state)
	m.record(state)
	return tok, state
}

func (m *TokenManager) readToken() (*domain.Token, error) {
	var tok *domain.Token
	err := m.materializer.WithPlaintext(domain.KindToken, m.service, m.key, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: read token: %w", domain.ErrTokenAbsent, err)
		}
		defer clear(data)

		var t domain.Token
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("%w: parse token: %w", domain.ErrTokenAbsent, err)
		}
		tok = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

func (m *TokenManager) refresh(ctx context.Context, tok *domain.Token) (*domain.Token, error) {
	m.logger.Debug("refreshing %s token", m.service)
	fresh, err := m.provider.Refresh(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTokenRefreshFailed, m.service, err)
	}
	if fresh == nil {
		return nil, fmt.Errorf("%w: %s: provider returned no token", domain.ErrTokenRefreshFailed, m.service)
	}

	fresh = inheritToken(fresh, tok)
	if state := fresh.Classify(m.scopes, m.now()); state != domain.StateValid {
		return nil, fmt.Errorf("%w: %s: refreshed token is %s", domain.ErrTokenRefreshFailed, m.service, state)
	}
	m.record(domain.StateRefreshed)
	return fresh, nil
}

func (m *TokenManager) reauthorize(ctx context.Context) (*domain.Token, error) {
	client, err := m.clientCredential()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrAuthorizationFailed, m.service, err)
	}

	m.logger.Info("starting interactive authorization for %s", m.service)
	tok, err := m.authorizer.Authorize(ctx, client, m.scopes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrAuthorizationFailed, m.service, err)
	}
	if tok == nil {
		return nil, fmt.Errorf("%w: %s: authorizer returned no token", domain.ErrAuthorizationFailed, m.service)
	}

	tok = tok.Clone()
	if tok.ClientID == "" {
		tok.ClientID = client.ClientID
	}
	if tok.ClientSecret == "" {
		tok.ClientSecret = client.ClientSecret
	}
	if tok.TokenURI == "" {
		tok.TokenURI = client.TokenURL
	}
	if len(tok.Scopes) == 0 {
		tok.Scopes = append([]string(nil), m.scopes...)
	}

	if state := tok.Classify(m.scopes, m.now()); state != domain.StateValid {
		return nil, fmt.Errorf("%w: %s: authorized token is %s", domain.ErrAuthorizationFailed, m.service, state)
	}
	m.record(domain.StateReAuthorized)
	return m.persist(tok)
}

// clientCredential materializes and parses the stored client credential.
// Every failure here is fatal to the call.
func (m *TokenManager) clientCredential() (*domain.ClientCredential, error) {
	var client *domain.ClientCredential
	err := m.materializer.WithPlaintext(domain.KindCredential, m.service, m.key, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: read credential: %w", domain.ErrCredentialUnavailable, err)
		}
		defer clear(data)

		c, err := m.provider.ParseClientCredential(data)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrCredentialUnavailable, err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (m *TokenManager) persist(tok *domain.Token) (*domain.Token, error) {
	data, err := json.Marshal(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: encode token: %w", domain.ErrPersistenceFailed, err)
	}
	defer clear(data)

	if err := m.store.Write(domain.KindToken, m.service, data, m.key); err != nil {
		return nil, err
	}
	m.record(domain.StatePersisted)
	m.logger.Debug("persisted %s token", m.service)
	return tok, nil
}

func (m *TokenManager) record(state domain.TokenState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = append(m.trace, state)
}

func (m *TokenManager) resetTrace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = nil
}

// inheritToken fills fields a refresh response may omit from the previous token.
func inheritToken(fresh, prev *domain.Token) *domain.Token {
	t := fresh.Clone()
	if t.RefreshToken == "" {
		t.RefreshToken = prev.RefreshToken
	}
	if t.TokenURI == "" {
		t.TokenURI = prev.TokenURI
	}
	if t.ClientID == "" {
		t.ClientID = prev.ClientID
	}
	if t.ClientSecret == "" {
		t.ClientSecret = prev.ClientSecret
	}
	if t.TokenType == "" {
		t.TokenType = prev.TokenType
	}
	if len(t.Scopes) == 0 {
		t.Scopes = append([]string(nil), prev.Scopes...)
	}
	return t
}
