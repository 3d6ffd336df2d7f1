package encfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SecretStore = (*Store)(nil)

// DirPerms restricts the secrets directory to its owner.
const DirPerms = 0o700

// Store is a file-based implementation of driven.SecretStore.
type Store struct {
	dir   string
	codec driven.SecretCodec
}

// NewStore creates a store rooted at dir.
// If dir is empty, defaults to ~/.redoffice/secrets.
func NewStore(dir string, codec driven.SecretCodec) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".redoffice", "secrets")
	}
	return &Store{dir: dir, codec: codec}, nil
}

// Dir returns the secrets directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the fixed file path of an artifact.
func (s *Store) Path(kind domain.SecretKind, service domain.Service) string {
	return filepath.Join(s.dir, service.FileName(kind))
}

// Exists reports whether an artifact is present.
func (s *Store) Exists(kind domain.SecretKind, service domain.Service) bool {
	info, err := os.Stat(s.Path(kind, service))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the encrypted blob for kind and service.
func (s *Store) Read(kind domain.SecretKind, service domain.Service) (domain.EncryptedBlob, error) {
	return readBlob(s.Path(kind, service))
}

// Write encrypts plaintext and atomically replaces the artifact.
func (s *Store) Write(kind domain.SecretKind, service domain.Service, plaintext []byte, key domain.SymmetricKey) error {
	blob, err := s.codec.Encrypt(plaintext, key)
	if err != nil {
		return fmt.Errorf("%w: encrypt %s %s: %w", domain.ErrPersistenceFailed, service, kind, err)
	}

	if err := os.MkdirAll(s.dir, DirPerms); err != nil {
		return fmt.Errorf("%w: create secrets directory: %w", domain.ErrPersistenceFailed, err)
	}

	path := s.Path(kind, service)
	if err := atomic.WriteFile(path, bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrPersistenceFailed, filepath.Base(path), err)
	}
	return nil
}

// readBlob reads an encrypted file, separating "missing" from other failures.
func readBlob(path string) (domain.EncryptedBlob, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSecretNotFound, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSecretUnreadable, filepath.Base(path), err)
	}
	return domain.EncryptedBlob(data), nil
}
