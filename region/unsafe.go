package region

import "unsafe"

// atomicPointer reinterprets the 4 bytes at buf[off:off+4] as a pointer to a
// native-endian uint32, the representation sync/atomic operates on. Callers
// are responsible for 4-byte alignment; every offset this package exposes
// atomic access to (lock_state, read_count) is defined by the layout package
// to already satisfy it.
func atomicPointer(buf []byte, off int) unsafe.Pointer {
	return unsafe.Pointer(&buf[off])
}
