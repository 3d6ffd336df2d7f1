package domain

import "errors"

// Domain errors represent failures of the credential store and token lifecycle.
// These are distinct from infrastructure errors, which are wrapped with %w.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedService indicates an unknown service name.
	ErrUnsupportedService = errors.New("unsupported service")

	// ErrInvalidKey indicates a symmetric key that is not 32 bytes of base64.
	ErrInvalidKey = errors.New("invalid symmetric key")

	// Secret storage errors.

	// ErrInvalidCiphertext indicates decryption failed authentication:
	// wrong key, corrupted or tampered data, or input that is not ciphertext.
	ErrInvalidCiphertext = errors.New("invalid ciphertext (wrong key or corrupted data)")

	// ErrSecretNotFound indicates the encrypted file does not exist.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretUnreadable indicates the encrypted file exists but could not be read.
	ErrSecretUnreadable = errors.New("secret unreadable")

	// ErrPersistenceFailed indicates an encrypted artifact could not be written.
	ErrPersistenceFailed = errors.New("persistence failed")

	// Materialization policy errors.

	// ErrTokenAbsent is the recoverable signal that no usable token could be
	// materialized. The token lifecycle falls back to re-authorization.
	ErrTokenAbsent = errors.New("token absent")

	// ErrCredentialUnavailable is the fatal signal that the OAuth client
	// credential could not be materialized. It has no automatic substitute.
	ErrCredentialUnavailable = errors.New("client credential unavailable")

	// Token lifecycle errors.

	// ErrTokenRefreshFailed indicates the provider rejected a refresh attempt.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrAuthorizationFailed indicates the interactive authorization flow
	// could not complete. Fatal for the current invocation.
	ErrAuthorizationFailed = errors.New("authorization failed")
)
