// keymanager_concurrent_test.go: Concurrency tests for the per-identifier lifecycle guard.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/agilira/umbra"
)

func TestConcurrentLifecycle_DistinctIdentifiers(t *testing.T) {
	km := umbra.NewKeyManager(nil)

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("worker-%d", w)

			if _, err := km.GenerateKey(umbra.KeySize, id).Unwrap(); err != nil {
				errCh <- fmt.Errorf("generate %s: %w", id, err)
				return
			}
			key, err := km.RetrieveKey(id).Unwrap()
			if err != nil {
				errCh <- fmt.Errorf("retrieve %s: %w", id, err)
				return
			}
			envelope, err := umbra.Encrypt(umbra.NewSecureBuffer([]byte(id)), key).Unwrap()
			if err != nil {
				errCh <- fmt.Errorf("encrypt %s: %w", id, err)
				return
			}
			rotation, err := km.RotateKey(id, envelope).Unwrap()
			if err != nil {
				errCh <- fmt.Errorf("rotate %s: %w", id, err)
				return
			}
			plaintext, err := umbra.Decrypt(rotation.Reencrypted, rotation.Key).Unwrap()
			if err != nil {
				errCh <- fmt.Errorf("decrypt %s: %w", id, err)
				return
			}
			if string(plaintext.Bytes()) != id {
				errCh <- fmt.Errorf("round trip for %s lost content", id)
				return
			}
			if _, err := km.DeleteKey(id).Unwrap(); err != nil {
				errCh <- fmt.Errorf("delete %s: %w", id, err)
			}
		}(w)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}

	ids, err := km.ListKeyIdentifiers().Unwrap()
	if err != nil {
		t.Fatalf("Failed to list identifiers: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected empty store after all deletions, got %v", ids)
	}
}

func TestConcurrentRotation_SameIdentifier(t *testing.T) {
	km := umbra.NewKeyManager(nil)
	if _, err := km.GenerateKey(umbra.KeySize, "contended").Unwrap(); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	const rotations = 32
	var wg sync.WaitGroup
	errCh := make(chan error, rotations)

	for i := 0; i < rotations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := km.RotateKey("contended", nil).Unwrap(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("Serialized rotation reported failure: %v", err)
	}

	// The identifier still resolves to a single valid key
	key, err := km.RetrieveKey("contended").Unwrap()
	if err != nil {
		t.Fatalf("Failed to retrieve rotated key: %v", err)
	}
	if key.Material.Len() != umbra.KeySize {
		t.Errorf("Rotated key has %d bytes, expected %d", key.Material.Len(), umbra.KeySize)
	}
}

func TestConcurrentReaders_NoCoordination(t *testing.T) {
	km := umbra.NewKeyManager(nil)
	if _, err := km.GenerateKey(umbra.KeySize, "shared").Unwrap(); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	key, err := km.RetrieveKey("shared").Unwrap()
	if err != nil {
		t.Fatalf("Failed to retrieve key: %v", err)
	}

	const readers = 24
	var wg sync.WaitGroup
	errCh := make(chan error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte(fmt.Sprintf("reader-%d", i))
			envelope, err := umbra.Encrypt(umbra.NewSecureBuffer(payload), key).Unwrap()
			if err != nil {
				errCh <- err
				return
			}
			decrypted, err := umbra.Decrypt(envelope, key).Unwrap()
			if err != nil {
				errCh <- err
				return
			}
			if string(decrypted.Bytes()) != string(payload) {
				errCh <- fmt.Errorf("reader %d lost content", i)
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}
}
