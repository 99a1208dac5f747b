// errors.go: Classified error taxonomy for secure buffer, cipher, and key lifecycle operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"errors"
)

// Public sentinel errors forming the closed error taxonomy of the package.
// Every failure returned by an exposed operation wraps exactly one of these,
// so callers can branch on the kind with errors.Is() while the wrapped rich
// error carries the diagnostic reason.
var (
	// ErrInvalidInput is returned when a required argument is missing or malformed.
	ErrInvalidInput = errors.New("umbra: invalid input")

	// ErrInvalidKeySize is returned when key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.New("umbra: invalid key size")

	// ErrInvalidFormat is returned when an envelope is too short to contain an IV and tag.
	ErrInvalidFormat = errors.New("umbra: invalid envelope format")

	// ErrInvalidEncoding is returned when hex or base64 input cannot be decoded.
	ErrInvalidEncoding = errors.New("umbra: invalid encoding")

	// ErrOutOfBounds is returned when a slice or split range exceeds the buffer length.
	ErrOutOfBounds = errors.New("umbra: out of bounds")

	// ErrAllocationFailed is returned when a buffer of the requested length cannot be created.
	ErrAllocationFailed = errors.New("umbra: allocation failed")

	// ErrEncryptionFailed is returned when the underlying cipher fails to encrypt.
	ErrEncryptionFailed = errors.New("umbra: encryption failed")

	// ErrDecryptionFailed is returned on authentication failure or malformed ciphertext.
	// Wrong key and tampered data are deliberately indistinguishable to avoid
	// creating a decryption oracle.
	ErrDecryptionFailed = errors.New("umbra: decryption failed")

	// ErrUnsupportedOperation is returned when an algorithm other than AES-256-GCM is requested.
	ErrUnsupportedOperation = errors.New("umbra: unsupported operation")

	// ErrStorageOperationFailed is returned when the injected KeyStore reports a failure
	// or has no key under the requested identifier.
	ErrStorageOperationFailed = errors.New("umbra: storage operation failed")

	// ErrInternal is returned for failures that do not map to any other kind.
	ErrInternal = errors.New("umbra: internal error")
)

// Error codes for rich error handling
const (
	ErrCodeInvalidInput      = "UMBRA_INVALID_INPUT"
	ErrCodeInvalidKeySize    = "UMBRA_INVALID_KEY_SIZE"
	ErrCodeInvalidFormat     = "UMBRA_INVALID_FORMAT"
	ErrCodeInvalidEncoding   = "UMBRA_INVALID_ENCODING"
	ErrCodeOutOfBounds       = "UMBRA_OUT_OF_BOUNDS"
	ErrCodeAllocationFailed  = "UMBRA_ALLOCATION_FAILED"
	ErrCodeEncryptionFailed  = "UMBRA_ENCRYPTION_FAILED"
	ErrCodeDecryptionFailed  = "UMBRA_DECRYPTION_FAILED"
	ErrCodeUnsupported       = "UMBRA_UNSUPPORTED_OPERATION"
	ErrCodeStorageFailed     = "UMBRA_STORAGE_FAILED"
	ErrCodeInternal          = "UMBRA_INTERNAL"
	ErrCodeKeyGeneration     = "UMBRA_KEY_GENERATION"
	ErrCodeIdentifierTaken   = "UMBRA_IDENTIFIER_TAKEN"
	ErrCodeDerivationFailure = "UMBRA_KEY_DERIVATION"
)
