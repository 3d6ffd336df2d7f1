// Package nacl implements the SecretCodec port with NaCl secretbox
// (XSalsa20-Poly1305).
//
// Ciphertext layout: 24-byte random nonce followed by the sealed box.
package nacl

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.SecretCodec = Codec{}

const nonceSize = 24

// Codec is a stateless secretbox SecretCodec.
type Codec struct{}

// NewCodec creates a secretbox codec.
func NewCodec() Codec {
	return Codec{}
}

// Encrypt seals plaintext under key with a fresh random nonce.
func (Codec) Encrypt(plaintext []byte, key domain.SymmetricKey) (domain.EncryptedBlob, error) {
	k, err := keyArray(key)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, k), nil
}

// Decrypt opens ciphertext under key.
func (Codec) Decrypt(ciphertext domain.EncryptedBlob, key domain.SymmetricKey) ([]byte, error) {
	k, err := keyArray(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", domain.ErrInvalidCiphertext)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, k)
	if !ok {
		return nil, domain.ErrInvalidCiphertext
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func keyArray(key domain.SymmetricKey) (*[domain.KeySize]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var k [domain.KeySize]byte
	copy(k[:], key)
	return &k, nil
}
