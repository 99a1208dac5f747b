// cipher.go: AES-256-GCM authenticated encryption engine and IV policy.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

// Global cipher cache - avoids aes.NewCipher + cipher.NewGCM overhead on
// repeated operations under the same key.
var (
	cipherCacheMu sync.RWMutex
	cipherCache   = make(map[string]cipher.AEAD)
)

// cachedGCM returns a cached GCM cipher for the key material, creating and
// caching it if necessary. The cache is keyed by the material fingerprint,
// never by the material itself.
func cachedGCM(material *SecureBuffer) (cipher.AEAD, error) {
	fingerprint := Fingerprint(material)

	cipherCacheMu.RLock()
	if gcm, exists := cipherCache[fingerprint]; exists {
		cipherCacheMu.RUnlock()
		return gcm, nil
	}
	cipherCacheMu.RUnlock()

	block, err := aes.NewCipher(material.content())
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	cipherCacheMu.Lock()
	cipherCache[fingerprint] = gcm
	cipherCacheMu.Unlock()

	return gcm, nil
}

// ValidateAlgorithm checks a requested algorithm identifier against the
// single supported cipher.
//
// Returns ErrUnsupportedOperation for anything other than AES-256-GCM.
func ValidateAlgorithm(name string) error {
	if name != AlgorithmAES256GCM {
		richErr := goerrors.New(ErrCodeUnsupported, fmt.Sprintf("algorithm %q is not supported, use %s", name, AlgorithmAES256GCM))
		return fmt.Errorf("%w: %w", ErrUnsupportedOperation, richErr)
	}
	return nil
}

// GenerateKeyMaterial creates sizeBytes of cryptographically secure random
// material, used both for fresh keys and for caller-managed IVs.
//
// Fails with ErrInvalidInput for a non-positive size and ErrInternal if the
// system random source fails.
func GenerateKeyMaterial(sizeBytes int) Result[*SecureBuffer] {
	if sizeBytes <= 0 {
		richErr := goerrors.New(ErrCodeInvalidInput, fmt.Sprintf("material size must be positive (got %d)", sizeBytes))
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrInvalidInput, richErr))
	}
	material := make([]byte, sizeBytes)
	if _, err := io.ReadFull(rand.Reader, material); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeKeyGeneration, "failed to read from system random source")
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrInternal, richErr))
	}
	return Ok(newOwnedBuffer(material))
}

// Encrypt encrypts a plaintext buffer under the given key using AES-256-GCM.
//
// A fresh random 12-byte IV is drawn on every call, so the operation is
// never deterministic and IV reuse under the same key is impossible by
// construction. The returned envelope concatenates the IV with the
// ciphertext and authentication tag; empty plaintext is supported and
// yields an envelope of IVSize+TagSize bytes.
//
// Errors:
//   - ErrInvalidKeySize if the key material is not exactly KeySize bytes
//   - ErrUnsupportedOperation if the key carries a foreign algorithm identifier
//   - ErrEncryptionFailed on any underlying cipher failure
//
// Example:
//
//	material, _ := umbra.GenerateKeyMaterial(umbra.KeySize).Unwrap()
//	key := umbra.NewEncryptionKey("k1", material)
//	env, err := umbra.Encrypt(umbra.NewSecureBuffer([]byte("hello")), key).Unwrap()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(env.Len()) // Output: 33
func Encrypt(plaintext *SecureBuffer, key *EncryptionKey) Result[*Envelope] {
	if err := key.Validate(); err != nil {
		return Fail[*Envelope](err)
	}

	gcm, err := cachedGCM(key.Material)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeEncryptionFailed, "failed to initialize cipher")
		return Fail[*Envelope](fmt.Errorf("%w: %w", ErrEncryptionFailed, richErr))
	}

	ivBuffer := getIVBuffer()
	defer putIVBuffer(ivBuffer)
	iv := (*ivBuffer)[:IVSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeEncryptionFailed, "failed to generate IV")
		return Fail[*Envelope](fmt.Errorf("%w: %w", ErrEncryptionFailed, richErr))
	}

	// Stage IV||ciphertext||tag in a pooled buffer, then hand an exact copy
	// to the envelope so nothing aliases pool memory.
	expectedSize := IVSize + plaintext.Len() + gcm.Overhead()
	staging := getStagingBuffer()
	defer putStagingBuffer(staging)
	if cap(staging) < expectedSize {
		staging = make([]byte, 0, expectedSize)
	}

	staging = append(staging, iv...)
	sealed := gcm.Seal(staging, iv, plaintext.content(), nil) // #nosec G407 -- IV is drawn from crypto/rand on every call

	out := make([]byte, len(sealed))
	copy(out, sealed)
	return Ok(newAttachedEnvelope(newOwnedBuffer(out)))
}

// Decrypt decrypts an attached envelope under the given key, verifying the
// GCM authentication tag.
//
// Authentication failure and malformed ciphertext both surface as
// ErrDecryptionFailed: wrong key and tampered data are deliberately
// indistinguishable so the error channel cannot act as an oracle.
//
// Errors:
//   - ErrInvalidFormat if the envelope is nil, detached, or not longer than IVSize
//   - ErrInvalidKeySize / ErrUnsupportedOperation from key validation
//   - ErrDecryptionFailed on authentication failure or corrupt ciphertext
func Decrypt(envelope *Envelope, key *EncryptionKey) Result[*SecureBuffer] {
	if err := key.Validate(); err != nil {
		return Fail[*SecureBuffer](err)
	}
	iv, ciphertext, err := envelope.SplitIV()
	if err != nil {
		return Fail[*SecureBuffer](err)
	}

	gcm, err := cachedGCM(key.Material)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeDecryptionFailed, "failed to initialize cipher")
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr))
	}

	plaintext, err := gcm.Open(nil, iv.content(), ciphertext.content(), nil)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeDecryptionFailed, "GCM authentication failed (wrong key or tampered data)")
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr))
	}
	return Ok(newOwnedBuffer(plaintext))
}

// EncryptWithIV is the advanced encryption path taking an optional
// caller-supplied IV.
//
// With a nil IV the behavior matches Encrypt exactly. With a 12-byte IV the
// returned envelope is detached: it holds only ciphertext and tag, and the
// caller is responsible for transporting the IV out of band and for never
// reusing it under the same key.
//
// Returns ErrInvalidInput if a supplied IV is not exactly IVSize bytes.
func EncryptWithIV(plaintext *SecureBuffer, key *EncryptionKey, iv *SecureBuffer) Result[*Envelope] {
	if iv == nil {
		return Encrypt(plaintext, key)
	}
	if iv.Len() != IVSize {
		richErr := goerrors.New(ErrCodeInvalidInput, fmt.Sprintf("IV must be %d bytes (got %d)", IVSize, iv.Len()))
		return Fail[*Envelope](fmt.Errorf("%w: %w", ErrInvalidInput, richErr))
	}
	if err := key.Validate(); err != nil {
		return Fail[*Envelope](err)
	}

	gcm, err := cachedGCM(key.Material)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeEncryptionFailed, "failed to initialize cipher")
		return Fail[*Envelope](fmt.Errorf("%w: %w", ErrEncryptionFailed, richErr))
	}

	sealed := gcm.Seal(nil, iv.content(), plaintext.content(), nil) // #nosec G407 -- explicit-IV path, uniqueness is the caller's contract
	return Ok(newDetachedEnvelope(newOwnedBuffer(sealed)))
}

// DecryptWithIV is the advanced decryption path for detached envelopes whose
// IV was transported out of band.
//
// With a nil IV the behavior matches Decrypt and the envelope must be
// attached. With an IV supplied the envelope must be detached.
func DecryptWithIV(envelope *Envelope, key *EncryptionKey, iv *SecureBuffer) Result[*SecureBuffer] {
	if iv == nil {
		return Decrypt(envelope, key)
	}
	if iv.Len() != IVSize {
		richErr := goerrors.New(ErrCodeInvalidInput, fmt.Sprintf("IV must be %d bytes (got %d)", IVSize, iv.Len()))
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrInvalidInput, richErr))
	}
	if envelope == nil || !envelope.Detached() || envelope.Len() < TagSize {
		richErr := goerrors.New(ErrCodeInvalidFormat, "explicit-IV decryption requires a detached envelope")
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrInvalidFormat, richErr))
	}
	if err := key.Validate(); err != nil {
		return Fail[*SecureBuffer](err)
	}

	gcm, err := cachedGCM(key.Material)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeDecryptionFailed, "failed to initialize cipher")
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr))
	}

	plaintext, err := gcm.Open(nil, iv.content(), envelope.buf.content(), nil)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeDecryptionFailed, "GCM authentication failed (wrong key or tampered data)")
		return Fail[*SecureBuffer](fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr))
	}
	return Ok(newOwnedBuffer(plaintext))
}
