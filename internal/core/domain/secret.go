package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// KeySize is the length in bytes of a SymmetricKey.
const KeySize = 32

// SymmetricKey authenticates and decrypts exactly one set of encrypted
// artifacts. It is held by the caller and never stored beside its ciphertext.
type SymmetricKey []byte

// EncryptedBlob is ciphertext produced by encrypting a full plaintext payload.
type EncryptedBlob []byte

// GenerateKey returns a fresh random SymmetricKey.
func GenerateKey() (SymmetricKey, error) {
	key := make(SymmetricKey, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// ParseKey decodes the textual (URL-safe base64) form of a key.
// Both padded and unpadded encodings are accepted.
func ParseKey(s string) (SymmetricKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(raw))
	}
	return SymmetricKey(raw), nil
}

// String returns the padded URL-safe base64 form handed to operators.
func (k SymmetricKey) String() string {
	return base64.URLEncoding.EncodeToString(k)
}

// Validate reports whether the key has the expected length.
func (k SymmetricKey) Validate() error {
	if len(k) != KeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(k))
	}
	return nil
}

// SecretKind identifies which artifact an encrypted file holds.
type SecretKind string

const (
	// KindCredential is the OAuth client credential (client-secret JSON).
	KindCredential SecretKind = "credential"
	// KindToken is the OAuth token (authorized-user JSON).
	KindToken SecretKind = "token"
)

// Service identifies a Google API integration.
type Service string

const (
	// ServiceCalendar is the Google Calendar API.
	ServiceCalendar Service = "calendar"
	// ServiceMail is the Gmail API.
	ServiceMail Service = "mail"
	// ServiceSpreadsheet is the Google Sheets API.
	ServiceSpreadsheet Service = "spreadsheet"
)

// AllServices lists every supported service in a stable order.
func AllServices() []Service {
	return []Service{ServiceCalendar, ServiceMail, ServiceSpreadsheet}
}

// ParseService resolves a service name, accepting common aliases.
func ParseService(name string) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "calendar":
		return ServiceCalendar, nil
	case "mail", "gmail":
		return ServiceMail, nil
	case "spreadsheet", "spreadsheets", "sheets":
		return ServiceSpreadsheet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedService, name)
	}
}

// Scopes returns the fixed ScopeSet requested for the service.
func (s Service) Scopes() ScopeSet {
	switch s {
	case ServiceCalendar:
		return NewScopeSet("https://www.googleapis.com/auth/calendar.events")
	case ServiceMail:
		return NewScopeSet("https://mail.google.com/")
	case ServiceSpreadsheet:
		return NewScopeSet("https://www.googleapis.com/auth/spreadsheets")
	default:
		return nil
	}
}

// FileName returns the fixed file name for an artifact of the given kind.
func (s Service) FileName(kind SecretKind) string {
	return fmt.Sprintf("%s_%s.enc", s, kind)
}
