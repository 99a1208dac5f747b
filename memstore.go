// memstore.go: In-memory KeyStore keeping key material in memguard enclaves.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"fmt"
	"sync"

	goerrors "github.com/agilira/go-errors"
	"github.com/awnumar/memguard"
)

// MemoryKeyStore is the reference KeyStore implementation. Key material is
// held in memguard enclaves, so it sits encrypted in process memory and is
// only decrypted for the duration of a Get. It is not durable: contents are
// lost when the process exits.
//
// Safe for concurrent use.
type MemoryKeyStore struct {
	mu       sync.RWMutex
	enclaves map[string]*memguard.Enclave
}

// NewMemoryKeyStore creates an empty in-memory key store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{
		enclaves: make(map[string]*memguard.Enclave),
	}
}

// Put stores a copy of the material under the identifier, replacing any
// existing entry.
func (s *MemoryKeyStore) Put(identifier string, material *SecureBuffer) error {
	if identifier == "" {
		richErr := goerrors.New(ErrCodeInvalidInput, "identifier cannot be empty")
		return fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}
	if material.Len() == 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, "key material cannot be empty")
		return fmt.Errorf("%w: %w", ErrInvalidInput, richErr)
	}

	// NewEnclave wipes its input, which is why it gets the copy from Bytes
	// rather than the buffer's own storage.
	enclave := memguard.NewEnclave(material.Bytes())

	s.mu.Lock()
	s.enclaves[identifier] = enclave
	s.mu.Unlock()
	return nil
}

// Get returns an independent copy of the material stored under the identifier.
func (s *MemoryKeyStore) Get(identifier string) (*SecureBuffer, error) {
	s.mu.RLock()
	enclave, exists := s.enclaves[identifier]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, identifier)
	}

	locked, err := enclave.Open()
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeStorageFailed, "failed to open enclave")
		return nil, fmt.Errorf("%w: %w", ErrStorageOperationFailed, richErr)
	}
	defer locked.Destroy()

	return NewSecureBuffer(locked.Bytes()), nil
}

// Remove deletes the entry under the identifier.
func (s *MemoryKeyStore) Remove(identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.enclaves[identifier]; !exists {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, identifier)
	}
	delete(s.enclaves, identifier)
	return nil
}

// List returns all stored identifiers.
func (s *MemoryKeyStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identifiers := make([]string, 0, len(s.enclaves))
	for id := range s.enclaves {
		identifiers = append(identifiers, id)
	}
	return identifiers, nil
}
