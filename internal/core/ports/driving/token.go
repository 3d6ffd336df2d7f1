package driving

import (
	"context"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

// TokenService yields valid OAuth tokens for one service and one key.
type TokenService interface {
	// Token returns a token that is Valid at the moment of return,
	// refreshing or re-authorizing and persisting as needed.
	Token(ctx context.Context) (*domain.Token, error)

	// Reauthorize skips loading and refresh and runs the interactive flow.
	Reauthorize(ctx context.Context) (*domain.Token, error)

	// Inspect loads and classifies the stored token without side effects.
	Inspect() (*domain.Token, domain.TokenState)

	// Trace returns the states visited by the most recent Token call.
	Trace() []domain.TokenState
}

// SessionFactory hands out API sessions for a service.
type SessionFactory interface {
	// Session returns a usable session for the service and its fixed scopes.
	Session(ctx context.Context, service domain.Service) (*domain.Session, error)
}
