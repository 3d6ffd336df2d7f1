package driven

import (
	"context"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

// TokenFunc returns a token valid at the moment of return.
type TokenFunc func(ctx context.Context) (*domain.Token, error)

// SessionBuilder creates a ready-to-use API client for a service from a
// validated token. When the token lapses mid-session the client calls
// renew for a replacement. The returned client is opaque to the core.
type SessionBuilder interface {
	Build(ctx context.Context, service domain.Service, token *domain.Token, renew TokenFunc) (any, error)
}
