// key.go: Encryption key type, validation, and fingerprinting.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"crypto/sha256"
	"fmt"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// KeySize is the required key size for AES-256 encryption in bytes.
// AES-256 requires exactly 32 bytes (256 bits) for the encryption key.
const KeySize = 32

// AlgorithmAES256GCM is the single algorithm identifier this package supports.
// Any other requested identifier yields ErrUnsupportedOperation.
const AlgorithmAES256GCM = "AES-256-GCM"

// EncryptionKey is symmetric key material plus an opaque identifier.
// The metadata fields are descriptive only and are not authenticated by
// the cipher. Keys are immutable value objects once created; rotation
// produces a new key under the same identifier rather than mutating one.
type EncryptionKey struct {
	ID        string        `json:"id"`         // Unique identifier within a KeyManager
	Material  *SecureBuffer `json:"-"`          // Key bytes, never serialized
	Algorithm string        `json:"algorithm"`  // Cryptographic algorithm the key is intended for
	Bits      int           `json:"bits"`       // Key length in bits
	CreatedAt time.Time     `json:"created_at"` // Creation timestamp
}

// NewEncryptionKey builds a key around the given material. The key takes
// ownership of the buffer; callers must not zeroize it while the key is live.
func NewEncryptionKey(id string, material *SecureBuffer) *EncryptionKey {
	return &EncryptionKey{
		ID:        id,
		Material:  material,
		Algorithm: AlgorithmAES256GCM,
		Bits:      material.Len() * 8,
		CreatedAt: timecache.CachedTime().UTC(),
	}
}

// Validate checks that the key is usable for AES-256-GCM before any cipher
// call is attempted.
//
// Returns ErrUnsupportedOperation for a foreign algorithm identifier and
// ErrInvalidKeySize when the material is not exactly KeySize bytes.
func (k *EncryptionKey) Validate() error {
	if k == nil || k.Material == nil {
		richErr := goerrors.New(ErrCodeInvalidInput, "encryption key is nil or has no material")
		return fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}
	if k.Algorithm != AlgorithmAES256GCM {
		richErr := goerrors.New(ErrCodeUnsupported, fmt.Sprintf("algorithm %q is not supported", k.Algorithm))
		return fmt.Errorf("%w: %w", ErrUnsupportedOperation, richErr)
	}
	if k.Material.Len() != KeySize {
		richErr := goerrors.New(ErrCodeInvalidKeySize, fmt.Sprintf("key size must be %d bytes for AES-256 (got %d)", KeySize, k.Material.Len()))
		return fmt.Errorf("%w: %w", ErrInvalidKeySize, richErr)
	}
	return nil
}

// Zeroize wipes the key material. The key must not be used afterwards.
func (k *EncryptionKey) Zeroize() {
	if k != nil {
		k.Material.Zeroize()
	}
}

// Fingerprint generates a short non-cryptographic identifier for key
// material: the first 8 bytes of its SHA-256 hash as hex. Useful for cache
// keys and logging without exposing the material itself.
//
// Returns an empty string for empty material.
func Fingerprint(material *SecureBuffer) string {
	if material.Len() == 0 {
		return ""
	}
	hash := sha256.Sum256(material.content())
	return fmt.Sprintf("%016x", hash[:8])
}
