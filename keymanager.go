// keymanager.go: Key lifecycle orchestration - generate, import, retrieve, rotate, delete.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"fmt"
	"sync"

	goerrors "github.com/agilira/go-errors"
	"github.com/google/uuid"
)

// KeyManager orchestrates the key lifecycle over an injected KeyStore:
// generation, import, retrieval, rotation with optional re-encryption of
// dependent ciphertext, and deletion.
//
// Mutual exclusion is per identifier, not per store: concurrent lifecycle
// operations on the same identifier serialize, operations on different
// identifiers proceed in parallel. Retrieved keys are independent copies,
// so concurrent readers need no coordination.
//
// No operation retries automatically; storage failures surface to the
// caller, who decides whether to retry.
type KeyManager struct {
	store KeyStore

	mu    sync.Mutex             // guards the lock table only
	locks map[string]*sync.Mutex // one lock per key identifier
}

// Rotation is the outcome of RotateKey: the replacement key and, when
// dependent ciphertext was supplied, that ciphertext re-encrypted under it.
type Rotation struct {
	Key         *EncryptionKey // New key stored under the rotated identifier
	Reencrypted *Envelope      // Supplied data under the new key, nil if none was given
}

// NewKeyManager creates a key manager over the given store. A nil store
// falls back to a fresh MemoryKeyStore.
func NewKeyManager(store KeyStore) *KeyManager {
	if store == nil {
		store = NewMemoryKeyStore()
	}
	return &KeyManager{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing lifecycle operations on identifier.
func (km *KeyManager) lockFor(identifier string) *sync.Mutex {
	km.mu.Lock()
	defer km.mu.Unlock()

	lock, exists := km.locks[identifier]
	if !exists {
		lock = &sync.Mutex{}
		km.locks[identifier] = lock
	}
	return lock
}

// GenerateKey creates sizeBytes of secure random material and stores it
// under the identifier, which is returned on success. Pass an empty
// identifier to have a fresh unique one synthesized.
//
// Fails with ErrStorageOperationFailed if the identifier is already taken
// or persistence fails. Note that only KeySize-byte keys are usable with
// the cipher; other sizes store fine but fail key validation at use.
//
// Example:
//
//	km := umbra.NewKeyManager(nil)
//	id, err := km.GenerateKey(umbra.KeySize, "k1").Unwrap()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(id) // Output: k1
func (km *KeyManager) GenerateKey(sizeBytes int, identifier string) Result[string] {
	material, err := GenerateKeyMaterial(sizeBytes).Unwrap()
	if err != nil {
		return Fail[string](err)
	}
	return km.storeNewKey(material, identifier)
}

// ImportKey stores caller-supplied key material under the identifier,
// synthesizing one when empty. Used for migrating externally-generated
// keys; the material is copied, the caller keeps ownership of its buffer.
func (km *KeyManager) ImportKey(material *SecureBuffer, identifier string) Result[string] {
	if material.Len() == 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, "imported key material cannot be empty")
		return Fail[string](fmt.Errorf("%w: %w", ErrInvalidInput, richErr))
	}
	return km.storeNewKey(material.Clone(), identifier)
}

// ImportKeyFromPassword derives KeySize bytes from the password and salt
// with Argon2id (nil params for defaults) and imports the result.
func (km *KeyManager) ImportKeyFromPassword(password, salt []byte, identifier string, params *KDFParams) Result[string] {
	material, err := DeriveKey(password, salt, KeySize, params)
	if err != nil {
		return Fail[string](err)
	}
	return km.storeNewKey(material, identifier)
}

// storeNewKey persists material under a new identifier, taking ownership of
// the buffer. Identifier uniqueness is enforced here: lifecycle replacement
// of existing material goes through RotateKey only.
func (km *KeyManager) storeNewKey(material *SecureBuffer, identifier string) Result[string] {
	if identifier == "" {
		identifier = uuid.NewString()
	}

	lock := km.lockFor(identifier)
	lock.Lock()
	defer lock.Unlock()

	if existing, err := km.store.Get(identifier); err == nil {
		existing.Zeroize()
		material.Zeroize()
		richErr := goerrors.New(ErrCodeIdentifierTaken, fmt.Sprintf("identifier %q already holds a key", identifier))
		return Fail[string](fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr))
	}

	if err := km.store.Put(identifier, material); err != nil {
		material.Zeroize()
		richErr := goerrors.Wrap(err, ErrCodeStorageFailed, "failed to persist key material")
		return Fail[string](fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr))
	}
	material.Zeroize() // the store holds its own copy now
	return Ok(identifier)
}

// RetrieveKey returns an independent copy of the key stored under the
// identifier.
//
// Fails with ErrStorageOperationFailed if the identifier is absent or the
// store errors.
func (km *KeyManager) RetrieveKey(identifier string) Result[*EncryptionKey] {
	material, err := km.store.Get(identifier)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeStorageFailed, fmt.Sprintf("no key found for identifier %q", identifier))
		return Fail[*EncryptionKey](fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr))
	}
	return Ok(NewEncryptionKey(identifier, material))
}

// DeleteKey removes the key stored under the identifier. Deletion is
// terminal and not idempotent: a second call on the same identifier fails,
// so callers can detect double-deletion bugs.
func (km *KeyManager) DeleteKey(identifier string) Result[Void] {
	lock := km.lockFor(identifier)
	lock.Lock()
	defer lock.Unlock()

	if err := km.store.Remove(identifier); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeStorageFailed, fmt.Sprintf("failed to delete key %q", identifier))
		return Fail[Void](fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr))
	}
	return Ok(Void{})
}

// RotateKey replaces the key under the identifier with fresh KeySize-byte
// material, zeroizing the old bytes once the replacement is stored.
//
// When dataToReencrypt is supplied it is decrypted under the old key before
// the replacement happens - that ordering is mandatory, the old key is gone
// afterwards - and re-encrypted under the new key. If that decryption
// fails, the rotation itself still stands (the key is replaced) but the
// operation reports ErrDecryptionFailed, since rotation and re-encryption
// are not separable once the old key is discarded.
//
// Fails with ErrStorageOperationFailed if the identifier is absent or
// persistence of the new key fails; in the latter case the old key remains
// in place.
func (km *KeyManager) RotateKey(identifier string, dataToReencrypt *Envelope) Result[Rotation] {
	lock := km.lockFor(identifier)
	lock.Lock()
	defer lock.Unlock()

	oldMaterial, err := km.store.Get(identifier)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeStorageFailed, fmt.Sprintf("cannot rotate absent key %q", identifier))
		return Fail[Rotation](fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr))
	}
	oldKey := NewEncryptionKey(identifier, oldMaterial)

	// Decrypt before the old key is replaced; after replacement the
	// plaintext would be unrecoverable.
	var plaintext *SecureBuffer
	var decryptErr error
	if dataToReencrypt != nil {
		plaintext, decryptErr = Decrypt(dataToReencrypt, oldKey).Unwrap()
	}

	newMaterial, err := GenerateKeyMaterial(KeySize).Unwrap()
	if err != nil {
		oldKey.Zeroize()
		return Fail[Rotation](err)
	}
	if err := km.store.Put(identifier, newMaterial); err != nil {
		newMaterial.Zeroize()
		oldKey.Zeroize()
		richErr := goerrors.Wrap(err, ErrCodeStorageFailed, "failed to persist rotated key")
		return Fail[Rotation](fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr))
	}
	oldKey.Zeroize()

	newKey := NewEncryptionKey(identifier, newMaterial)
	if dataToReencrypt == nil {
		return Ok(Rotation{Key: newKey})
	}
	if decryptErr != nil {
		return Fail[Rotation](decryptErr)
	}

	reencrypted, err := Encrypt(plaintext, newKey).Unwrap()
	plaintext.Zeroize()
	if err != nil {
		return Fail[Rotation](err)
	}
	return Ok(Rotation{Key: newKey, Reencrypted: reencrypted})
}

// ListKeyIdentifiers returns all currently stored identifiers, an empty
// slice when none exist.
func (km *KeyManager) ListKeyIdentifiers() Result[[]string] {
	identifiers, err := km.store.List()
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeStorageFailed, "failed to list key identifiers")
		return Fail[[]string](fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr))
	}
	if identifiers == nil {
		identifiers = []string{}
	}
	return Ok(identifiers)
}
