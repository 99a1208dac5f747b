// Package umbra provides the cryptographic core for secret management:
// a secure byte container, an AES-256-GCM authenticated encryption engine,
// and a key lifecycle manager over an injected storage capability.
//
// The package offers:
//   - SecureBuffer: constant-time-comparable secret bytes with slicing,
//     concatenation, hex/base64 codec, and explicit zeroization
//   - AES-256-GCM encryption and decryption with cipher caching and a fixed
//     IV policy (fresh random 12-byte IV per call, framed into the envelope)
//   - An advanced explicit-IV path producing detached envelopes for callers
//     that transport the IV out of band
//   - Key lifecycle management: generate, import, retrieve, rotate (with
//     re-encryption of dependent ciphertext), delete, list
//   - Argon2id and HKDF-SHA256 derivation for migrating external key material
//   - A classified error taxonomy and a uniform Result type so callers can
//     branch on failure kind without string inspection
//
// Persistence is delegated to the KeyStore interface; MemoryKeyStore, backed
// by memguard enclaves, is the bundled reference implementation. The package
// performs no network I/O and no transport security.
//
// # Quick Start
//
//	km := umbra.NewKeyManager(nil)
//
//	id, err := km.GenerateKey(umbra.KeySize, "k1").Unwrap()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	key, err := km.RetrieveKey(id).Unwrap()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	envelope, err := umbra.Encrypt(umbra.NewSecureBuffer([]byte("sensitive")), key).Unwrap()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	plaintext, err := umbra.Decrypt(envelope, key).Unwrap()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer plaintext.Zeroize()
//
// # Wire Format
//
// Encrypt produces a single buffer laid out as
//
//	[12-byte IV][ciphertext][16-byte GCM tag]
//
// with no length prefix; consumers recover the plaintext length as envelope
// length minus 28. Splitting an envelope at byte 12 always yields the IV and
// the ciphertext-plus-tag cleanly.
//
// # Error Handling
//
// Every exposed operation returns a Result carrying either a value or an
// error wrapping exactly one of the package sentinels (ErrInvalidKeySize,
// ErrDecryptionFailed, ErrStorageOperationFailed, ...). Decryption failures
// deliberately do not distinguish a wrong key from tampered ciphertext.
//
// # Concurrency
//
// SecureBuffer and the cipher functions are stateless and safe for
// unsynchronized concurrent use. The KeyManager serializes lifecycle
// operations per key identifier; operations on different identifiers run
// in parallel.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package umbra
