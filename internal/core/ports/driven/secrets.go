package driven

import "github.com/custodia-labs/redoffice/internal/core/domain"

// SecretCodec encrypts and decrypts a byte blob with a symmetric key.
// Implementations hold no state and are safe for concurrent use.
type SecretCodec interface {
	// Encrypt seals plaintext under key.
	Encrypt(plaintext []byte, key domain.SymmetricKey) (domain.EncryptedBlob, error)

	// Decrypt opens ciphertext under key.
	// Returns domain.ErrInvalidCiphertext when authentication fails.
	Decrypt(ciphertext domain.EncryptedBlob, key domain.SymmetricKey) ([]byte, error)
}

// SecretStore persists encrypted artifacts, one per (kind, service) pair.
type SecretStore interface {
	// Read returns the encrypted blob for kind and service.
	// Returns domain.ErrSecretNotFound if absent and domain.ErrSecretUnreadable
	// on any other I/O failure.
	Read(kind domain.SecretKind, service domain.Service) (domain.EncryptedBlob, error)

	// Write encrypts plaintext with key and atomically replaces the artifact.
	// Returns domain.ErrPersistenceFailed on failure.
	Write(kind domain.SecretKind, service domain.Service, plaintext []byte, key domain.SymmetricKey) error

	// Exists reports whether an artifact is present.
	Exists(kind domain.SecretKind, service domain.Service) bool

	// Path returns the fixed file path of an artifact.
	Path(kind domain.SecretKind, service domain.Service) string
}

// Materializer exposes decrypted artifacts as short-lived plaintext files.
//
// Token failures wrap domain.ErrTokenAbsent (recoverable); credential
// failures wrap domain.ErrCredentialUnavailable (fatal). Errors returned by
// fn are passed through untouched. The plaintext file is removed before
// WithPlaintext returns, on every path.
type Materializer interface {
	WithPlaintext(
		kind domain.SecretKind,
		service domain.Service,
		key domain.SymmetricKey,
		fn func(path string) error,
	) error
}
