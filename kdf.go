// kdf.go: Key derivation for importing externally-sourced key material.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"crypto/sha256"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Default Argon2id parameters for password-based key derivation.
// These values balance security and derivation time for interactive use.
const (
	// DefaultTime is the default number of Argon2id iterations.
	DefaultTime = 3

	// DefaultMemory is the default Argon2id memory usage in MB.
	DefaultMemory = 64

	// DefaultThreads is the default Argon2id parallelism.
	DefaultThreads = 4
)

// KDFParams defines custom parameters for Argon2id key derivation.
// Zero-valued fields fall back to the package defaults.
type KDFParams struct {
	// Time is the number of iterations. If zero, DefaultTime is used.
	Time uint32 `json:"time,omitempty"`

	// Memory is the memory usage in MB. If zero, DefaultMemory is used.
	Memory uint32 `json:"memory,omitempty"`

	// Threads is the parallelism. If zero, DefaultThreads is used.
	Threads uint8 `json:"threads,omitempty"`
}

// DeriveKey derives key material from a password and salt using Argon2id.
//
// The derived material is deterministic for a fixed (password, salt, params)
// triple, which is what makes it suitable for re-creating an import key on
// another host. Pass nil params to use the package defaults.
//
// Parameters:
//   - password: The password to derive from (cannot be empty)
//   - salt: The derivation salt (cannot be empty, should be random)
//   - keyLen: Desired output length in bytes (must be positive)
//   - params: Custom Argon2id parameters, or nil for defaults
//
// Example:
//
//	material, err := umbra.DeriveKey([]byte("passphrase"), salt, umbra.KeySize, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	id, err := km.ImportKey(material, "migrated-key").Unwrap()
func DeriveKey(password, salt []byte, keyLen int, params *KDFParams) (*SecureBuffer, error) {
	if len(password) == 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, "password cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}
	if len(salt) == 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, "salt cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}
	if keyLen <= 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, "key length must be positive")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}

	time := uint32(DefaultTime)
	memory := uint32(DefaultMemory * 1024)
	threads := uint8(DefaultThreads)
	if params != nil {
		if params.Time > 0 {
			time = params.Time
		}
		if params.Memory > 0 {
			memory = params.Memory * 1024
		}
		if params.Threads > 0 {
			threads = params.Threads
		}
	}

	// Conversion is safe, keyLen was validated above.
	material := argon2.IDKey(password, salt, time, memory, threads, uint32(keyLen)) // #nosec G115
	return newOwnedBuffer(material), nil
}

// DeriveSubkey derives a subkey from high-entropy master material using
// HKDF-SHA256 (RFC 5869). Distinct info contexts yield independent subkeys
// from the same master, so one imported master can fan out into per-purpose
// keys without reuse across contexts.
//
// Salt may be nil. For password-based derivation use DeriveKey instead;
// HKDF assumes its input is already uniformly random.
func DeriveSubkey(master *SecureBuffer, salt, info []byte, keyLen int) (*SecureBuffer, error) {
	if master.Len() == 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, "master material cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}
	if keyLen <= 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, "key length must be positive")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}
	if keyLen > 255*sha256.Size {
		richErr := goerrors.New(ErrCodeInvalidInput, "key length too large for HKDF-SHA256")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}

	subkey := make([]byte, keyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master.content(), salt, info), subkey); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeDerivationFailure, "HKDF expansion failed")
		return nil, fmt.Errorf("%w: %w", ErrInternal, richErr)
	}
	return newOwnedBuffer(subkey), nil
}
