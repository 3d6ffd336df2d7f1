package driven

import (
	"context"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

// OAuthProvider is the narrow boundary to the OAuth provider.
// Implementations never retry.
type OAuthProvider interface {
	// ParseClientCredential parses client-secret JSON.
	ParseClientCredential(data []byte) (*domain.ClientCredential, error)

	// Refresh exchanges the token's refresh token for a new token.
	// The token carries the client id, secret and token URI needed.
	Refresh(ctx context.Context, token *domain.Token) (*domain.Token, error)
}

// Authorizer runs the interactive authorization-code flow.
// It blocks until consent completes, fails, or ctx is done.
type Authorizer interface {
	Authorize(ctx context.Context, client *domain.ClientCredential, scopes domain.ScopeSet) (*domain.Token, error)
}
