package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
	"github.com/custodia-labs/redoffice/internal/core/ports/driving"
)

// Ensure SessionFactory implements the interface.
var _ driving.SessionFactory = (*SessionFactory)(nil)

// TokenServiceFunc resolves the token service for a service.
type TokenServiceFunc func(service domain.Service) (driving.TokenService, error)

// SessionFactory turns valid tokens into API sessions.
type SessionFactory struct {
	tokens  TokenServiceFunc
	builder driven.SessionBuilder
}

// NewSessionFactory creates a session factory.
func NewSessionFactory(tokens TokenServiceFunc, builder driven.SessionBuilder) *SessionFactory {
	return &SessionFactory{
		tokens:  tokens,
		builder: builder,
	}
}

// Session obtains a valid token for service and hands it to the builder.
func (f *SessionFactory) Session(ctx context.Context, service domain.Service) (*domain.Session, error) {
	if f.tokens == nil || f.builder == nil {
		return nil, fmt.Errorf("%w: session factory is not configured", domain.ErrInvalidInput)
	}

	ts, err := f.tokens(service)
	if err != nil {
		return nil, err
	}

	tok, err := ts.Token(ctx)
	if err != nil {
		return nil, err
	}

	client, err := f.builder.Build(ctx, service, tok, ts.Token)
	if err != nil {
		return nil, fmt.Errorf("build %s session: %w", service, err)
	}

	return &domain.Session{
		Service: service,
		Scopes:  service.Scopes(),
		Client:  client,
	}, nil
}
