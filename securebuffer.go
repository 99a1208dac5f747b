// securebuffer.go: Secure byte container for keys, plaintext, ciphertext, and IVs.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"runtime"

	goerrors "github.com/agilira/go-errors"
)

// SecureBuffer is an opaque sequence of bytes treated as secret material.
// It owns its backing storage exclusively: constructors copy their input,
// Slice and Split copy the selected range, and Bytes returns a copy, so no
// two live buffers ever alias mutable storage.
//
// Backing storage is zero-filled when Zeroize is called and again when the
// buffer is collected, whichever comes first.
//
// Example:
//
//	buf := umbra.NewSecureBuffer([]byte("sensitive"))
//	defer buf.Zeroize()
//	fmt.Println(buf.Len()) // Output: 9
type SecureBuffer struct {
	data []byte
}

// NewSecureBuffer creates a buffer holding a copy of the given bytes.
// A nil or empty slice yields an empty buffer. Never fails.
func NewSecureBuffer(b []byte) *SecureBuffer {
	data := make([]byte, len(b))
	copy(data, b)
	return newOwnedBuffer(data)
}

// NewZeroedBuffer creates a buffer of length zero bytes.
//
// Returns ErrAllocationFailed if the length is negative.
func NewZeroedBuffer(length int) (*SecureBuffer, error) {
	if length < 0 {
		richErr := goerrors.New(ErrCodeAllocationFailed, fmt.Sprintf("buffer length cannot be negative (got %d)", length))
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, richErr)
	}
	return newOwnedBuffer(make([]byte, length)), nil
}

// Concat creates a new buffer holding a's bytes followed by b's bytes.
// Both inputs remain valid and unmodified; nil inputs count as empty.
func Concat(a, b *SecureBuffer) *SecureBuffer {
	x, y := a.content(), b.content()
	data := make([]byte, 0, len(x)+len(y))
	data = append(data, x...)
	data = append(data, y...)
	return newOwnedBuffer(data)
}

// FromHex creates a buffer from a hexadecimal string.
//
// Returns ErrInvalidEncoding if the input is not valid hexadecimal.
func FromHex(s string) (*SecureBuffer, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeInvalidEncoding, "failed to decode hex input")
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, richErr)
	}
	return newOwnedBuffer(data), nil
}

// FromBase64 creates a buffer from a standard-encoding base64 string.
//
// Returns ErrInvalidEncoding if the input is not valid base64.
func FromBase64(s string) (*SecureBuffer, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeInvalidEncoding, "failed to decode base64 input")
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, richErr)
	}
	return newOwnedBuffer(data), nil
}

// newOwnedBuffer wraps a byte slice the buffer takes exclusive ownership of.
// Internal constructors use it to avoid a second copy; the slice must not be
// retained by the caller.
func newOwnedBuffer(data []byte) *SecureBuffer {
	b := &SecureBuffer{data: data}
	// Release-time zeroization for buffers the caller never wipes explicitly.
	runtime.SetFinalizer(b, func(sb *SecureBuffer) {
		wipeBytes(sb.data)
	})
	return b
}

// content returns the backing storage, treating a nil buffer as empty.
func (b *SecureBuffer) content() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the number of bytes held by the buffer.
func (b *SecureBuffer) Len() int {
	return len(b.content())
}

// Bytes returns a copy of the buffer's content. The caller owns the copy
// and should wipe it when done handling secret material.
func (b *SecureBuffer) Bytes() []byte {
	data := make([]byte, b.Len())
	copy(data, b.content())
	return data
}

// Clone returns an independent buffer with the same content.
func (b *SecureBuffer) Clone() *SecureBuffer {
	return NewSecureBuffer(b.content())
}

// Slice returns a new buffer containing b[start:end].
//
// Returns ErrOutOfBounds if the range does not satisfy
// 0 <= start <= end <= Len().
func (b *SecureBuffer) Slice(start, end int) (*SecureBuffer, error) {
	if start < 0 || end < start || end > b.Len() {
		richErr := goerrors.New(ErrCodeOutOfBounds, fmt.Sprintf("slice range [%d:%d] exceeds buffer of %d bytes", start, end, b.Len()))
		return nil, fmt.Errorf("%w: %w", ErrOutOfBounds, richErr)
	}
	return NewSecureBuffer(b.content()[start:end]), nil
}

// Split returns the pair (b[0:at], b[at:Len()]) as two independent buffers.
//
// Returns ErrOutOfBounds if at is negative or exceeds the buffer length.
func (b *SecureBuffer) Split(at int) (*SecureBuffer, *SecureBuffer, error) {
	if at < 0 || at > b.Len() {
		richErr := goerrors.New(ErrCodeOutOfBounds, fmt.Sprintf("split point %d exceeds buffer of %d bytes", at, b.Len()))
		return nil, nil, fmt.Errorf("%w: %w", ErrOutOfBounds, richErr)
	}
	head := NewSecureBuffer(b.content()[:at])
	tail := NewSecureBuffer(b.content()[at:])
	return head, tail, nil
}

// Equal compares two buffers in constant time.
//
// The comparison cost is proportional to the longer input regardless of
// where the contents first differ. A length mismatch returns false after
// burning the same comparison work, so the mismatch position is not
// observable through timing either.
func (b *SecureBuffer) Equal(o *SecureBuffer) bool {
	x, y := b.content(), o.content()
	if len(x) != len(y) {
		longer := x
		if len(y) > len(x) {
			longer = y
		}
		subtle.ConstantTimeCompare(longer, longer)
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}

// Hex returns the buffer content as a lowercase hexadecimal string.
func (b *SecureBuffer) Hex() string {
	return hex.EncodeToString(b.content())
}

// Base64 returns the buffer content as a standard-encoding base64 string.
func (b *SecureBuffer) Base64() string {
	return base64.StdEncoding.EncodeToString(b.content())
}

// Zeroize overwrites the buffer's backing storage with zeros in place.
// Idempotent: the buffer stays usable afterwards and reads as all zeros.
func (b *SecureBuffer) Zeroize() {
	wipeBytes(b.content())
}

// wipeBytes overwrites a byte slice with zeros.
func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
