// securebuffer_test.go: Test cases for the secure byte container.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewSecureBuffer_CopiesInput(t *testing.T) {
	raw := []byte("secret-material")
	buf := NewSecureBuffer(raw)

	if buf.Len() != len(raw) {
		t.Fatalf("Expected length %d, got %d", len(raw), buf.Len())
	}

	// Mutating the input must not reach the buffer
	raw[0] = 'X'
	if buf.Bytes()[0] == 'X' {
		t.Error("Buffer aliases caller-owned input")
	}

	// Mutating the returned copy must not reach the buffer either
	out := buf.Bytes()
	out[1] = 'Y'
	if buf.Bytes()[1] == 'Y' {
		t.Error("Bytes returned a view of backing storage")
	}
}

func TestNewSecureBuffer_NilAndEmpty(t *testing.T) {
	if NewSecureBuffer(nil).Len() != 0 {
		t.Error("Nil input should yield an empty buffer")
	}
	if NewSecureBuffer([]byte{}).Len() != 0 {
		t.Error("Empty input should yield an empty buffer")
	}
}

func TestNewZeroedBuffer(t *testing.T) {
	buf, err := NewZeroedBuffer(16)
	if err != nil {
		t.Fatalf("Failed to create zeroed buffer: %v", err)
	}
	if buf.Len() != 16 {
		t.Errorf("Expected length 16, got %d", buf.Len())
	}
	for i, b := range buf.Bytes() {
		if b != 0 {
			t.Errorf("Byte %d is %d, expected 0", i, b)
		}
	}

	if _, err := NewZeroedBuffer(0); err != nil {
		t.Errorf("Zero length should be allowed: %v", err)
	}

	_, err = NewZeroedBuffer(-1)
	if !errors.Is(err, ErrAllocationFailed) {
		t.Errorf("Expected ErrAllocationFailed for negative length, got %v", err)
	}
}

func TestConcat(t *testing.T) {
	a := NewSecureBuffer([]byte("head-"))
	b := NewSecureBuffer([]byte("tail"))

	joined := Concat(a, b)
	if !bytes.Equal(joined.Bytes(), []byte("head-tail")) {
		t.Errorf("Unexpected concat result: %q", joined.Bytes())
	}

	// Inputs stay intact
	if !bytes.Equal(a.Bytes(), []byte("head-")) || !bytes.Equal(b.Bytes(), []byte("tail")) {
		t.Error("Concat modified its inputs")
	}

	if Concat(nil, nil).Len() != 0 {
		t.Error("Concat of nil buffers should be empty")
	}
	if !bytes.Equal(Concat(nil, b).Bytes(), []byte("tail")) {
		t.Error("Concat with nil head lost the tail")
	}
}

func TestSlice(t *testing.T) {
	buf := NewSecureBuffer([]byte("0123456789"))

	mid, err := buf.Slice(2, 5)
	if err != nil {
		t.Fatalf("Failed to slice: %v", err)
	}
	if !bytes.Equal(mid.Bytes(), []byte("234")) {
		t.Errorf("Expected \"234\", got %q", mid.Bytes())
	}

	empty, err := buf.Slice(4, 4)
	if err != nil || empty.Len() != 0 {
		t.Errorf("Empty range slice failed: %v (len %d)", err, empty.Len())
	}

	// Slices never alias: wiping the slice leaves the parent intact
	mid.Zeroize()
	if !bytes.Equal(buf.Bytes(), []byte("0123456789")) {
		t.Error("Slice aliases parent storage")
	}

	for _, r := range [][2]int{{-1, 3}, {3, 2}, {0, 11}, {11, 11}} {
		if _, err := buf.Slice(r[0], r[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Slice(%d, %d): expected ErrOutOfBounds, got %v", r[0], r[1], err)
		}
	}
}

func TestSplit(t *testing.T) {
	buf := NewSecureBuffer([]byte("abcdef"))

	head, tail, err := buf.Split(2)
	if err != nil {
		t.Fatalf("Failed to split: %v", err)
	}
	if !bytes.Equal(head.Bytes(), []byte("ab")) || !bytes.Equal(tail.Bytes(), []byte("cdef")) {
		t.Errorf("Unexpected split result: %q / %q", head.Bytes(), tail.Bytes())
	}

	// Boundary splits are valid
	if h, tl, err := buf.Split(0); err != nil || h.Len() != 0 || tl.Len() != 6 {
		t.Errorf("Split at 0 failed: %v", err)
	}
	if h, tl, err := buf.Split(6); err != nil || h.Len() != 6 || tl.Len() != 0 {
		t.Errorf("Split at len failed: %v", err)
	}

	if _, _, err := buf.Split(7); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds past the end, got %v", err)
	}
	if _, _, err := buf.Split(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds for negative split, got %v", err)
	}
}

func TestEqual(t *testing.T) {
	a := NewSecureBuffer([]byte("same-content"))
	b := NewSecureBuffer([]byte("same-content"))
	c := NewSecureBuffer([]byte("xame-content"))
	d := NewSecureBuffer([]byte("same-contenx"))
	short := NewSecureBuffer([]byte("same"))

	if !a.Equal(b) {
		t.Error("Identical buffers should compare equal")
	}
	if a.Equal(c) || a.Equal(d) {
		t.Error("Differing buffers should not compare equal")
	}
	if a.Equal(short) || short.Equal(a) {
		t.Error("Length mismatch should not compare equal")
	}

	var nilBuf *SecureBuffer
	empty := NewSecureBuffer(nil)
	if !nilBuf.Equal(empty) {
		t.Error("Nil and empty buffers hold the same (zero) content")
	}
}

func TestHexRoundTrip(t *testing.T) {
	buf := NewSecureBuffer([]byte{0xde, 0xad, 0xbe, 0xef})

	if buf.Hex() != "deadbeef" {
		t.Errorf("Expected deadbeef, got %s", buf.Hex())
	}

	decoded, err := FromHex("deadbeef")
	if err != nil {
		t.Fatalf("Failed to decode hex: %v", err)
	}
	if !decoded.Equal(buf) {
		t.Error("Hex round-trip lost content")
	}

	_, err = FromHex("not-hex!")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got %v", err)
	}
	_, err = FromHex("abc") // odd length
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding for odd-length hex, got %v", err)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	buf := NewSecureBuffer([]byte("binary \x00 payload"))

	decoded, err := FromBase64(buf.Base64())
	if err != nil {
		t.Fatalf("Failed to decode base64: %v", err)
	}
	if !decoded.Equal(buf) {
		t.Error("Base64 round-trip lost content")
	}

	_, err = FromBase64("!!! not base64 !!!")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got %v", err)
	}
}

func TestZeroize(t *testing.T) {
	buf := NewSecureBuffer([]byte("wipe-me"))
	buf.Zeroize()

	for i, b := range buf.Bytes() {
		if b != 0 {
			t.Errorf("Byte %d is %d after zeroize, expected 0", i, b)
		}
	}
	if buf.Len() != 7 {
		t.Errorf("Zeroize changed length to %d", buf.Len())
	}

	// Idempotent
	buf.Zeroize()
	for _, b := range buf.Bytes() {
		if b != 0 {
			t.Error("Second zeroize left non-zero bytes")
		}
	}
}

func TestClone_Independent(t *testing.T) {
	buf := NewSecureBuffer([]byte("original"))
	clone := buf.Clone()

	buf.Zeroize()
	if !bytes.Equal(clone.Bytes(), []byte("original")) {
		t.Error("Clone shares storage with its source")
	}
}
