package google

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// TokenSourceAdapter adapts the token lifecycle to oauth2.TokenSource.
// Each call re-enters the lifecycle, which refreshes and persists as needed.
type TokenSourceAdapter struct {
	renew driven.TokenFunc
	ctx   context.Context
}

// NewTokenSource creates an oauth2.TokenSource that serves initial until it
// expires and then asks renew for a replacement. The returned source can be
// used with option.WithTokenSource() or oauth2.Transport.
func NewTokenSource(ctx context.Context, initial *domain.Token, renew driven.TokenFunc) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(ToOAuth2(initial), &TokenSourceAdapter{
		renew: renew,
		ctx:   ctx,
	})
}

// Token implements oauth2.TokenSource interface.
// Called by Google API clients when they need an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	if t.renew == nil {
		return nil, errors.New("google: token expired and no renewal configured")
	}
	tok, err := t.renew(t.ctx)
	if err != nil {
		return nil, err
	}
	return ToOAuth2(tok), nil
}

// ToOAuth2 converts a token for use by Google API clients. The refresh
// token is withheld: only the lifecycle refreshes.
func ToOAuth2(tok *domain.Token) *oauth2.Token {
	if tok == nil {
		return nil
	}
	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken: tok.AccessToken,
		TokenType:   tokenType,
		Expiry:      tok.Expiry,
	}
}
