// envelope.go: Wire format for authenticated ciphertext (IV, ciphertext, GCM tag).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

const (
	// IVSize is the length in bytes of the random initialization vector
	// drawn for every AES-256-GCM encryption.
	IVSize = 12

	// TagSize is the length in bytes of the GCM authentication tag
	// appended to the ciphertext.
	TagSize = 16
)

// Envelope is the wire format produced by encryption: a single buffer
// concatenating the 12-byte IV and the AEAD ciphertext, which itself ends
// with the 16-byte authentication tag. There is no length prefix; the
// plaintext length is the envelope length minus IVSize and TagSize.
//
// A detached envelope holds only ciphertext and tag: the IV was supplied by
// the caller on the advanced encryption path and travels out of band.
type Envelope struct {
	buf      *SecureBuffer
	detached bool
}

// NewEnvelope builds an attached envelope from an IV and the ciphertext-plus-tag.
// Both inputs are copied.
func NewEnvelope(iv, ciphertext *SecureBuffer) *Envelope {
	return &Envelope{buf: Concat(iv, ciphertext)}
}

// EnvelopeFromBytes wraps raw envelope bytes received from storage or transport.
//
// Returns ErrInvalidFormat if the input cannot contain a 12-byte IV followed
// by at least an authentication tag.
func EnvelopeFromBytes(b []byte) (*Envelope, error) {
	if len(b) <= IVSize {
		richErr := goerrors.New(ErrCodeInvalidFormat, fmt.Sprintf("envelope must exceed %d bytes (got %d)", IVSize, len(b)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, richErr)
	}
	return &Envelope{buf: NewSecureBuffer(b)}, nil
}

// DetachedEnvelopeFromBytes wraps ciphertext-plus-tag bytes whose IV travels
// out of band.
//
// Returns ErrInvalidFormat if the input is shorter than an authentication tag.
func DetachedEnvelopeFromBytes(b []byte) (*Envelope, error) {
	if len(b) < TagSize {
		richErr := goerrors.New(ErrCodeInvalidFormat, fmt.Sprintf("detached envelope must hold at least a %d-byte tag (got %d)", TagSize, len(b)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, richErr)
	}
	return &Envelope{buf: NewSecureBuffer(b), detached: true}, nil
}

// newAttachedEnvelope wraps an owned buffer already laid out as IV||ciphertext||tag.
func newAttachedEnvelope(buf *SecureBuffer) *Envelope {
	return &Envelope{buf: buf}
}

// newDetachedEnvelope wraps an owned buffer holding ciphertext||tag only.
func newDetachedEnvelope(buf *SecureBuffer) *Envelope {
	return &Envelope{buf: buf, detached: true}
}

// Len returns the envelope length in bytes.
func (e *Envelope) Len() int {
	if e == nil {
		return 0
	}
	return e.buf.Len()
}

// Detached reports whether the envelope carries no embedded IV.
func (e *Envelope) Detached() bool {
	return e != nil && e.detached
}

// Bytes returns a copy of the envelope's raw bytes, suitable for storage
// or transport.
func (e *Envelope) Bytes() []byte {
	if e == nil {
		return nil
	}
	return e.buf.Bytes()
}

// SplitIV splits an attached envelope at byte 12, yielding the IV and the
// ciphertext-plus-tag as independent buffers.
//
// Returns ErrInvalidFormat if the envelope is detached or too short.
func (e *Envelope) SplitIV() (*SecureBuffer, *SecureBuffer, error) {
	if e == nil || e.detached || e.buf.Len() <= IVSize {
		richErr := goerrors.New(ErrCodeInvalidFormat, "envelope carries no embedded IV to split")
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFormat, richErr)
	}
	return e.buf.Split(IVSize)
}

// Zeroize wipes the envelope's backing storage.
func (e *Envelope) Zeroize() {
	if e != nil {
		e.buf.Zeroize()
	}
}
