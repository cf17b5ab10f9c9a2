//go:build linux

package rwlock

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// futexWait blocks on addr while its value equals expect, for up to timeout.
// It returns on wake, on timeout, or spuriously — callers always re-check
// the condition in a loop, per standard futex usage.
func futexWait(addr *uint32, expect uint32, timeout time.Duration) {
	ts := unix.NsecToTimespec(timeout.Nanoseconds())

	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(unix.FUTEX_WAIT),
		uintptr(expect),
		uintptr(unsafe.Pointer(&ts)),
		0, 0,
	)
}

// futexWakeAll wakes every waiter blocked on addr.
func futexWakeAll(addr *uint32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(unix.FUTEX_WAKE),
		uintptr(1<<31-1),
		0, 0, 0,
	)
}
