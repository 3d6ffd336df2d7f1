package driving

import (
	"context"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

// CredentialInitializer performs the one-time encrypt-and-store of an OAuth
// client credential.
type CredentialInitializer interface {
	// Initialize validates raw client-secret JSON, encrypts it with key
	// (generating one when key is nil) and stores it for each service.
	Initialize(
		ctx context.Context,
		raw []byte,
		key domain.SymmetricKey,
		services []domain.Service,
	) (*domain.InitResult, error)
}
