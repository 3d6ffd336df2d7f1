package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
	"github.com/custodia-labs/redoffice/internal/core/ports/driving"
)

// Ensure CredentialService implements the interface.
var _ driving.CredentialInitializer = (*CredentialService)(nil)

// CredentialService encrypts and stores OAuth client credentials.
type CredentialService struct {
	store    driven.SecretStore
	provider driven.OAuthProvider
	logger   driven.Logger
}

// NewCredentialService creates a new credential service.
func NewCredentialService(store driven.SecretStore, provider driven.OAuthProvider, logger driven.Logger) *CredentialService {
	if logger == nil {
		logger = driven.NopLogger{}
	}
	return &CredentialService{
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// Initialize validates raw client-secret JSON and stores it encrypted for
// each service. A key is generated when none is supplied; the caller must
// keep it, since it is the only way to open the stored artifacts.
func (s *CredentialService) Initialize(
	ctx context.Context,
	raw []byte,
	key domain.SymmetricKey,
	services []domain.Service,
) (*domain.InitResult, error) {
	result := &domain.InitResult{Status: domain.InitPending}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: client credential is empty", domain.ErrInvalidInput)
	}
	client, err := s.provider.ParseClientCredential(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}

	if key == nil {
		if key, err = domain.GenerateKey(); err != nil {
			return nil, err
		}
		s.logger.Debug("generated a new symmetric key")
	} else if err := key.Validate(); err != nil {
		return nil, err
	}

	if len(services) == 0 {
		services = domain.AllServices()
	}

	for _, svc := range services {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.store.Write(domain.KindCredential, svc, raw, key); err != nil {
			return nil, err
		}
		s.logger.Info("stored %s client credential at %s", svc, s.store.Path(domain.KindCredential, svc))
	}

	result.Status = domain.InitSuccess
	result.Key = key
	result.Services = services
	return result, nil
}
