package domain

import (
	"fmt"
	"time"
)

// expiryDelta is how long before its recorded expiry a token is already
// considered expired, so a token is never handed out moments before it lapses.
const expiryDelta = 10 * time.Second

// Token is an OAuth token in Google's authorized-user JSON format.
// It is replaced wholesale on every refresh or re-authorization.
type Token struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`
	// TokenURI is the provider endpoint used for refresh.
	TokenURI string `json:"token_uri,omitempty"`
	// ClientID identifies the OAuth client the token was issued to.
	ClientID string `json:"client_id,omitempty"`
	// ClientSecret authenticates the OAuth client during refresh.
	ClientSecret string `json:"client_secret,omitempty"`
	// Scopes are the scopes granted to the token.
	Scopes []string `json:"scopes,omitempty"`
	// Expiry is when the access token expires. Zero means no expiry.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the token has expired.
func (t *Token) IsExpired() bool {
	return t.isExpiredAt(time.Now())
}

func (t *Token) isExpiredAt(now time.Time) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return !now.Before(t.Expiry.Add(-expiryDelta))
}

// HasRefreshToken returns true if a refresh token is available.
func (t *Token) HasRefreshToken() bool {
	return t.RefreshToken != ""
}

// Classify places a loaded token into Valid, ExpiredRefreshable or Unusable
// against the required scopes. A scope mismatch is Unusable because a refresh
// cannot widen the granted scopes.
func (t *Token) Classify(required ScopeSet, now time.Time) TokenState {
	if t == nil || (t.AccessToken == "" && t.RefreshToken == "") {
		return StateUnusable
	}
	if !NewScopeSet(t.Scopes...).Covers(required) {
		return StateUnusable
	}
	if t.AccessToken != "" && !t.isExpiredAt(now) {
		return StateValid
	}
	if t.HasRefreshToken() {
		return StateExpiredRefreshable
	}
	return StateUnusable
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	c.Scopes = append([]string(nil), t.Scopes...)
	return &c
}

// ClientCredential describes an OAuth client, parsed from client-secret JSON.
type ClientCredential struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURIs []string
}

// Validate checks the fields required to run an authorization flow.
func (c *ClientCredential) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client credential has no client_id", ErrInvalidInput)
	}
	if c.TokenURL == "" {
		return fmt.Errorf("%w: client credential has no token_uri", ErrInvalidInput)
	}
	return nil
}

// ScopeSet is an ordered, de-duplicated set of OAuth scopes.
type ScopeSet []string

// NewScopeSet builds a ScopeSet, dropping empty and duplicate entries.
func NewScopeSet(scopes ...string) ScopeSet {
	seen := make(map[string]struct{}, len(scopes))
	set := make(ScopeSet, 0, len(scopes))
	for _, s := range scopes {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		set = append(set, s)
	}
	return set
}

// Covers returns true if every scope in required is present in s.
func (s ScopeSet) Covers(required ScopeSet) bool {
	have := make(map[string]struct{}, len(s))
	for _, scope := range s {
		have[scope] = struct{}{}
	}
	for _, scope := range required {
		if _, ok := have[scope]; !ok {
			return false
		}
	}
	return true
}

// TokenState is a node of the token lifecycle state machine.
type TokenState string

const (
	StateNoToken            TokenState = "no_token"
	StateLoaded             TokenState = "loaded"
	StateValid              TokenState = "valid"
	StateExpiredRefreshable TokenState = "expired_refreshable"
	StateUnusable           TokenState = "unusable"
	StateRefreshed          TokenState = "refreshed"
	StateReAuthorized       TokenState = "reauthorized"
	StatePersisted          TokenState = "persisted"
)
