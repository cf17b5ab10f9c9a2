//go:build unix

package region

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// shared is a Region backed by an anonymous MAP_SHARED mapping: memory that
// remains shared across any execution context mapping the same pages (other
// goroutines in this process today; a forked/exec'd child that inherits the
// mapping, or a future process attaching via a shared-memory-aware
// transport, in the cases this package leaves room for). sync/atomic
// operates directly on the mapped bytes, which is exactly the word-level
// coordination the lock in package rwlock needs.
type shared struct {
	buf []byte
}

func newShared(size int) (Region, error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap shared region: %w", err)
	}

	return &shared{buf: buf}, nil
}

func (r *shared) Bytes() []byte { return r.buf }
func (r *shared) Len() int      { return len(r.buf) }
func (r *shared) Shared() bool  { return true }

func (r *shared) Uint32(off int) uint32 {
	return beUint32(r.buf[off : off+4])
}

func (r *shared) PutUint32(off int, v uint32) {
	bePutUint32(r.buf[off:off+4], v)
}

func (r *shared) Uint16(off int) uint16 {
	return beUint16(r.buf[off : off+2])
}

func (r *shared) PutUint16(off int, v uint16) {
	bePutUint16(r.buf[off:off+2], v)
}

func (r *shared) word32(off int) *uint32 {
	return (*uint32)(atomicPointer(r.buf, off))
}

func (r *shared) AtomicLoad32(off int) uint32 { return atomicLoad32(r.word32(off)) }

func (r *shared) AtomicStore32(off int, v uint32) { atomicStore32(r.word32(off), v) }

func (r *shared) AtomicAdd32(off int, delta int32) uint32 {
	return atomicAdd32(r.word32(off), delta)
}

func (r *shared) AtomicCAS32(off int, old, newVal uint32) bool {
	return atomicCAS32(r.word32(off), old, newVal)
}

func (r *shared) Word32Addr(off int) *uint32 { return r.word32(off) }

func (r *shared) Close() error {
	if r.buf == nil {
		return nil
	}

	buf := r.buf
	r.buf = nil

	return unix.Munmap(buf)
}
