// pool.go: Pooled scratch buffers for cipher operations, zeroed on return.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

import (
	"sync"
)

var (
	// Pool for IV-sized scratch buffers.
	ivBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, IVSize)
			return &buf
		},
	}

	// Pool for growable staging buffers used while assembling ciphertexts.
	// Pointers avoid an allocation per Put (SA6002).
	stagingBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, 0, 256)
			return &buf
		},
	}
)

// getIVBuffer retrieves an IV-sized scratch buffer from the pool.
func getIVBuffer() *[]byte {
	buf := ivBufferPool.Get().(*[]byte)
	*buf = (*buf)[:IVSize]
	return buf
}

// putIVBuffer wipes and returns an IV buffer to the pool.
func putIVBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	wipeBytes(*buf)
	ivBufferPool.Put(buf)
}

// getStagingBuffer retrieves a growable staging buffer with zero length.
func getStagingBuffer() []byte {
	buf := stagingBufferPool.Get().(*[]byte)
	return (*buf)[:0]
}

// putStagingBuffer wipes a staging buffer up to its capacity and returns it
// to the pool. Oversized buffers are dropped to keep the pool footprint flat.
func putStagingBuffer(buf []byte) {
	bufCap := cap(buf)
	if bufCap == 0 {
		return
	}
	wipeBytes(buf[:bufCap])
	if bufCap <= 64*1024 {
		stagingBufferPool.Put(&buf)
	}
}
