// Package oauth talks to the OAuth provider: parsing client secrets,
// refreshing tokens and running the installed-app authorization flow.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.OAuthProvider = (*Provider)(nil)

// Provider wraps golang.org/x/oauth2 for Google client secrets.
// It never retries.
type Provider struct {
	httpClient *http.Client
}

// NewProvider creates a provider. A nil client uses a 30 second timeout.
func NewProvider(httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Provider{httpClient: httpClient}
}

// ParseClientCredential parses Google client-secret JSON with an
// "installed" or "web" block.
func (p *Provider) ParseClientCredential(data []byte) (*domain.ClientCredential, error) {
	cfg, err := google.ConfigFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secret: %w", domain.ErrInvalidInput, err)
	}

	client := &domain.ClientCredential{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthURL:      cfg.Endpoint.AuthURL,
		TokenURL:     cfg.Endpoint.TokenURL,
		RedirectURIs: []string{cfg.RedirectURL},
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}
	return client, nil
}

// Refresh exchanges tok's refresh token for a new access token.
// The result carries tok's client fields and, unless the provider rotates
// it, tok's refresh token.
func (p *Provider) Refresh(ctx context.Context, tok *domain.Token) (*domain.Token, error) {
	if tok == nil || !tok.HasRefreshToken() {
		return nil, fmt.Errorf("%w: no refresh token", domain.ErrTokenRefreshFailed)
	}
	if tok.TokenURI == "" {
		return nil, fmt.Errorf("%w: token has no token_uri", domain.ErrTokenRefreshFailed)
	}

	cfg := &oauth2.Config{
		ClientID:     tok.ClientID,
		ClientSecret: tok.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tok.TokenURI},
		Scopes:       tok.Scopes,
	}

	// An empty access token forces the source to refresh.
	fresh, err := cfg.TokenSource(p.context(ctx), &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	out := FromOAuth2(fresh, tok.Scopes)
	out.ClientID = tok.ClientID
	out.ClientSecret = tok.ClientSecret
	out.TokenURI = tok.TokenURI
	if out.RefreshToken == "" {
		out.RefreshToken = tok.RefreshToken
	}
	return out, nil
}

// AuthCodeURL builds the consent URL with offline access and a PKCE
// S256 challenge derived from verifier.
func (p *Provider) AuthCodeURL(
	client *domain.ClientCredential,
	scopes domain.ScopeSet,
	redirectURI, state, verifier string,
) string {
	return p.config(client, scopes, redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades an authorization code for a token.
func (p *Provider) Exchange(
	ctx context.Context,
	client *domain.ClientCredential,
	scopes domain.ScopeSet,
	redirectURI, code, verifier string,
) (*domain.Token, error) {
	if code == "" {
		return nil, errors.New("empty authorization code")
	}

	tk, err := p.config(client, scopes, redirectURI).Exchange(p.context(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	out := FromOAuth2(tk, scopes)
	out.ClientID = client.ClientID
	out.ClientSecret = client.ClientSecret
	out.TokenURI = client.TokenURL
	return out, nil
}

func (p *Provider) config(client *domain.ClientCredential, scopes domain.ScopeSet, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  client.AuthURL,
			TokenURL: client.TokenURL,
		},
	}
}

func (p *Provider) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// FromOAuth2 converts an oauth2 token. Granted scopes come from the
// response's "scope" field, falling back to requested when absent.
func FromOAuth2(tk *oauth2.Token, requested []string) *domain.Token {
	scopes := append([]string(nil), requested...)
	if granted, ok := tk.Extra("scope").(string); ok && granted != "" {
		scopes = strings.Fields(granted)
	}

	return &domain.Token{
		AccessToken:  tk.AccessToken,
		RefreshToken: tk.RefreshToken,
		TokenType:    tk.Type(),
		Scopes:       scopes,
		Expiry:       tk.Expiry,
	}
}
