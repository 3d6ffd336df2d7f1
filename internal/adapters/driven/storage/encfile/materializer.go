package encfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// Ensure Materializer implements the interface.
var _ driven.Materializer = (*Materializer)(nil)

// FilePerms restricts plaintext files to owner-only read/write.
const FilePerms = 0o600

// Materializer decrypts artifacts into private temporary files.
type Materializer struct {
	store   driven.SecretStore
	codec   driven.SecretCodec
	tempDir string
}

// NewMaterializer creates a materializer reading from store.
// Temporary directories are created under tempDir, or os.TempDir() if empty.
func NewMaterializer(store driven.SecretStore, codec driven.SecretCodec, tempDir string) *Materializer {
	return &Materializer{
		store:   store,
		codec:   codec,
		tempDir: tempDir,
	}
}

// PlaintextHandle owns one decrypted temporary file.
// Release removes it; calling Release more than once is safe.
type PlaintextHandle struct {
	dir  string
	path string

	once sync.Once
	err  error
}

// Path returns the plaintext file path. Valid until Release.
func (h *PlaintextHandle) Path() string {
	return h.path
}

// Release removes the plaintext file and its private directory.
func (h *PlaintextHandle) Release() error {
	h.once.Do(func() {
		h.err = os.RemoveAll(h.dir)
	})
	return h.err
}

// Acquire decrypts the artifact for kind and service into a temporary file.
// The caller must Release the handle. Failures are classified by kind.
func (m *Materializer) Acquire(
	kind domain.SecretKind,
	service domain.Service,
	key domain.SymmetricKey,
) (*PlaintextHandle, error) {
	blob, err := m.store.Read(kind, service)
	if err != nil {
		return nil, classify(kind, err)
	}
	return m.open(blob, service.FileName(kind), kind, key)
}

// AcquireFile is Acquire on an explicit encrypted file path.
func (m *Materializer) AcquireFile(
	encryptedPath string,
	kind domain.SecretKind,
	key domain.SymmetricKey,
) (*PlaintextHandle, error) {
	blob, err := readBlob(encryptedPath)
	if err != nil {
		return nil, classify(kind, err)
	}
	return m.open(blob, filepath.Base(encryptedPath), kind, key)
}

// WithPlaintext decrypts the artifact, calls fn with the plaintext path and
// removes the file before returning, whether fn succeeds, fails or panics.
func (m *Materializer) WithPlaintext(
	kind domain.SecretKind,
	service domain.Service,
	key domain.SymmetricKey,
	fn func(path string) error,
) error {
	handle, err := m.Acquire(kind, service, key)
	if err != nil {
		return err
	}
	return use(handle, fn)
}

// WithPlaintextFile is WithPlaintext on an explicit encrypted file path.
func (m *Materializer) WithPlaintextFile(
	encryptedPath string,
	kind domain.SecretKind,
	key domain.SymmetricKey,
	fn func(path string) error,
) error {
	handle, err := m.AcquireFile(encryptedPath, kind, key)
	if err != nil {
		return err
	}
	return use(handle, fn)
}

// use calls fn with the handle's path and always releases the handle.
func use(handle *PlaintextHandle, fn func(path string) error) (err error) {
	defer func() {
		if releaseErr := handle.Release(); releaseErr != nil && err == nil {
			err = fmt.Errorf("remove plaintext: %w", releaseErr)
		}
	}()
	return fn(handle.Path())
}

// open decrypts blob and writes the plaintext to a private temp file.
func (m *Materializer) open(
	blob domain.EncryptedBlob,
	name string,
	kind domain.SecretKind,
	key domain.SymmetricKey,
) (*PlaintextHandle, error) {
	plaintext, err := m.codec.Decrypt(blob, key)
	if err != nil {
		return nil, classify(kind, fmt.Errorf("%s: %w", name, err))
	}
	defer clear(plaintext)

	handle, err := m.writeTemp(kind, plaintext)
	if err != nil {
		return nil, classify(kind, err)
	}
	return handle, nil
}

func (m *Materializer) writeTemp(kind domain.SecretKind, plaintext []byte) (*PlaintextHandle, error) {
	// MkdirTemp creates the directory with 0700.
	dir, err := os.MkdirTemp(m.tempDir, "redoffice-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	handle := &PlaintextHandle{
		dir:  dir,
		path: filepath.Join(dir, string(kind)+".json"),
	}

	f, err := os.OpenFile(handle.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerms)
	if err != nil {
		_ = handle.Release()
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(plaintext); err != nil {
		f.Close()
		_ = handle.Release()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = handle.Release()
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return handle, nil
}

// classify applies the kind policy: a token that cannot be materialized is
// absent (recoverable), a client credential that cannot be is unavailable (fatal).
func classify(kind domain.SecretKind, err error) error {
	switch kind {
	case domain.KindToken:
		return fmt.Errorf("%w: %w", domain.ErrTokenAbsent, err)
	case domain.KindCredential:
		return fmt.Errorf("%w: %w", domain.ErrCredentialUnavailable, err)
	default:
		return err
	}
}
