// Package region implements the raw buffer abstraction: allocation of either
// truly shared or process-local byte regions, with endian-explicit word
// access and the atomic 32-bit primitives the lock word arithmetic in
// package rwlock is built on.
//
// A Region never resizes in place. Growth, rehash, and defragmentation all
// allocate a new Region of the desired size and copy into it; the old one is
// released by its last holder.
package region

import (
	"fmt"

	"github.com/shmkv/shmkv/errs"
)

// Region is a flat, byte-addressable buffer that may or may not be backed by
// memory truly shared across execution contexts.
//
// All multi-byte accessors are big-endian, per spec §3.1. The Atomic* methods
// operate on a 32-bit word at the given byte offset and require 4-byte
// alignment; callers only ever use them on the index region's lock_state and
// read_count words.
type Region interface {
	// Bytes returns the full backing slice. Callers must not retain it past
	// Close, and must not reslice past its length.
	Bytes() []byte

	// Len reports the region size in bytes.
	Len() int

	// Shared reports whether this region is backed by memory that is truly
	// shared across execution contexts. When false, Lock/Unlock on this
	// region's words are no-ops (spec §5, degraded mode).
	Shared() bool

	// Uint32 reads a big-endian uint32 at byte offset off.
	Uint32(off int) uint32
	// PutUint32 writes a big-endian uint32 at byte offset off.
	PutUint32(off int, v uint32)
	// Uint16 reads a big-endian uint16 at byte offset off.
	Uint16(off int) uint16
	// PutUint16 writes a big-endian uint16 at byte offset off.
	PutUint16(off int, v uint16)

	// AtomicLoad32 atomically loads the 32-bit word at byte offset off.
	AtomicLoad32(off int) uint32
	// AtomicStore32 atomically stores v into the 32-bit word at byte offset off.
	AtomicStore32(off int, v uint32)
	// AtomicAdd32 atomically adds delta to the 32-bit word at byte offset off
	// and returns the new value.
	AtomicAdd32(off int, delta int32) uint32
	// AtomicCAS32 atomically compares-and-swaps the 32-bit word at byte
	// offset off from old to new, reporting whether it succeeded.
	AtomicCAS32(off int, old, new uint32) bool

	// Word32Addr returns a pointer to the native 32-bit word at byte offset
	// off, for use by package rwlock's futex wait/wake calls. Callers must
	// only ever read/write through the atomic accessors above or through the
	// futex syscalls; never plainly.
	Word32Addr(off int) *uint32

	// Close releases the region. A region backed by shared memory unmaps it;
	// a process-local region simply drops its reference. Safe to call more
	// than once.
	Close() error
}

// New allocates a Region of size bytes. When preferShared is true it first
// attempts a truly shared allocation (platform-dependent); on failure it
// falls back silently to a process-local region, per spec §4.1. When
// preferShared is false, it allocates a process-local region directly.
func New(size int, preferShared bool) (Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: region size must be positive, got %d", errs.ErrInvalidConfig, size)
	}

	if preferShared {
		if r, err := newShared(size); err == nil {
			return r, nil
		}
	}

	return newLocal(size), nil
}

// local is the process-local Region backing: a plain Go byte slice, visible
// only to goroutines within this process that hold a reference to it.
type local struct {
	buf []byte
}

func newLocal(size int) *local {
	return &local{buf: make([]byte, size)}
}

func (r *local) Bytes() []byte { return r.buf }
func (r *local) Len() int      { return len(r.buf) }
func (r *local) Shared() bool  { return false }

func (r *local) Uint32(off int) uint32 {
	return beUint32(r.buf[off : off+4])
}

func (r *local) PutUint32(off int, v uint32) {
	bePutUint32(r.buf[off:off+4], v)
}

func (r *local) Uint16(off int) uint16 {
	return beUint16(r.buf[off : off+2])
}

func (r *local) PutUint16(off int, v uint16) {
	bePutUint16(r.buf[off:off+2], v)
}

// word32 reinterprets the 4 bytes at off as a native-endian atomic word. This
// is safe for the lock words specifically: they are never read with Uint32
// concurrently with an atomic op on the same bytes, and their numeric value
// (0/1/2, or a small counter) round-trips identically regardless of which
// byte order the CPU's atomic instructions use internally, since every
// participant goes through these same atomic accessors.
func (r *local) word32(off int) *uint32 {
	return (*uint32)(atomicPointer(r.buf, off))
}

func (r *local) AtomicLoad32(off int) uint32 { return atomicLoad32(r.word32(off)) }

func (r *local) AtomicStore32(off int, v uint32) { atomicStore32(r.word32(off), v) }

func (r *local) AtomicAdd32(off int, delta int32) uint32 {
	return atomicAdd32(r.word32(off), delta)
}

func (r *local) AtomicCAS32(off int, old, newVal uint32) bool {
	return atomicCAS32(r.word32(off), old, newVal)
}

func (r *local) Word32Addr(off int) *uint32 { return r.word32(off) }

func (r *local) Close() error {
	r.buf = nil
	return nil
}
