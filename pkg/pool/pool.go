// Object pools for reducing GC pressure in hot paths
//
// Provides reusable object pools for the buffers the cutting pipeline
// allocates per sample:
// - Byte buffers (for formatting G-code blocks)
// - Float slices (for arc-length scratch space)
//
// Usage:
//
//	buf := pool.GetByteBuffer()
//	defer pool.PutByteBuffer(buf)
//	// format a block into buf...
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package pool

import (
	"strconv"
	"sync"
)

// maxPooledFloats bounds the scratch slices kept around between requests.
const maxPooledFloats = 1 << 16

var floatSlicePool = sync.Pool{
	New: func() any {
		s := make([]float64, 0, 256)
		return &s
	},
}

// GetFloat64Slice returns a zeroed slice of length size. Return it with
// PutFloat64Slice when done.
func GetFloat64Slice(size int) []float64 {
	sp := floatSlicePool.Get().(*[]float64)
	s := *sp
	if cap(s) < size {
		s = make([]float64, size)
	} else {
		s = s[:size]
		clear(s)
	}
	return s
}

// PutFloat64Slice returns a float64 slice to the pool
func PutFloat64Slice(s []float64) {
	if s == nil || cap(s) > maxPooledFloats {
		return
	}
	s = s[:0]
	floatSlicePool.Put(&s)
}

// ByteBuffer is an append-only buffer for one formatted G-code block.
type ByteBuffer struct {
	buf []byte
}

var byteBufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{
			buf: make([]byte, 0, 64), // one 4-axis block
		}
	},
}

// GetByteBuffer gets a byte buffer from the pool
func GetByteBuffer() *ByteBuffer {
	b := byteBufferPool.Get().(*ByteBuffer)
	b.buf = b.buf[:0]
	return b
}

// PutByteBuffer returns a byte buffer to the pool
func PutByteBuffer(b *ByteBuffer) {
	if b == nil {
		return
	}
	// Don't pool oversized buffers (> 4KB)
	if cap(b.buf) > 4096 {
		return
	}
	byteBufferPool.Put(b)
}

// Bytes returns the buffer's byte slice
func (b *ByteBuffer) Bytes() []byte {
	return b.buf
}

// String returns a copy of the buffer contents
func (b *ByteBuffer) String() string {
	return string(b.buf)
}

// WriteByte appends a single byte
func (b *ByteBuffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends a string
func (b *ByteBuffer) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// AppendFloat appends v in fixed notation with prec decimals.
func (b *ByteBuffer) AppendFloat(v float64, prec int) {
	b.buf = strconv.AppendFloat(b.buf, v, 'f', prec, 64)
}

// Len returns the buffer length
func (b *ByteBuffer) Len() int {
	return len(b.buf)
}

// Reset clears the buffer
func (b *ByteBuffer) Reset() {
	b.buf = b.buf[:0]
}
