// Package pool provides pooled byte buffers used as the decode scratch space
// mandated by the encoder contract: the core never decodes directly out of a
// live region, it copies into a scratch buffer sized to at least the entry's
// value_length (grown to the next power of two on demand) first. Pooling
// these buffers keeps repeated get()/at() calls allocation-free.
package pool

import "sync"

// ScratchDefaultSize is the initial capacity of the buffers the default
// scratch pool creates.
const (
	ScratchDefaultSize  = 256        // small enough for most int/float/short-string values
	ScratchMaxThreshold = 1024 * 256 // buffers larger than this are discarded, not pooled
)

// ByteBuffer is a growable byte slice wrapper, reused as decode scratch space.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// EnsureCap grows the buffer's capacity, if needed, to the next power of two
// that is at least n, per the encoder scratch-buffer contract in spec §4.2.
// It never shrinks an already-larger buffer.
func (bb *ByteBuffer) EnsureCap(n int) {
	if cap(bb.B) >= n {
		return
	}

	target := nextPowerOfTwo(n)
	newBuf := make([]byte, len(bb.B), target)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// SetLength sets the length of the buffer to n, growing capacity first if
// necessary.
func (bb *ByteBuffer) SetLength(n int) {
	bb.EnsureCap(n)
	bb.B = bb.B[:n]
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32

	return n + 1
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers.
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int // Optional maximum size threshold for buffers
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var scratchPool = NewByteBufferPool(ScratchDefaultSize, ScratchMaxThreshold)

// GetScratch retrieves a decode scratch buffer from the default pool, with
// capacity at least n (rounded up to the next power of two).
func GetScratch(n int) *ByteBuffer {
	bb := scratchPool.Get()
	bb.EnsureCap(n)

	return bb
}

// PutScratch returns a scratch buffer to the default pool.
func PutScratch(bb *ByteBuffer) {
	scratchPool.Put(bb)
}
