// keystore.go: Injected persistence capability for durable key material.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"errors"
)

// ErrKeyNotFound is returned by KeyStore implementations when no key exists
// under the requested identifier. The KeyManager surfaces it to callers
// wrapped in ErrStorageOperationFailed.
var ErrKeyNotFound = errors.New("umbra: no key found")

// KeyStore is the injected capability for durable key persistence consumed
// by the KeyManager. Any durable medium may implement it: an encrypted file,
// an OS keychain, a remote secret store. Implementations own the durable
// copy of key material and all I/O; the KeyManager treats the interface
// purely as a capability and never retries failed calls.
//
// Put must copy the material rather than retain the caller's buffer, and
// must overwrite an existing entry under the same identifier, which is how
// rotation replaces key material. Get must return an independent copy of
// the stored bytes.
type KeyStore interface {
	// Put stores a copy of the key material under the identifier, replacing
	// any existing entry.
	Put(identifier string, material *SecureBuffer) error

	// Get retrieves a copy of the key material stored under the identifier.
	// Returns ErrKeyNotFound if the identifier is absent.
	Get(identifier string) (*SecureBuffer, error)

	// Remove deletes the entry under the identifier.
	// Returns ErrKeyNotFound if the identifier is absent.
	Remove(identifier string) error

	// List returns all currently stored identifiers, in no particular order.
	List() ([]string, error)
}
