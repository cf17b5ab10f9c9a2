//go:build !linux

package rwlock

import (
	"runtime"
	"sync/atomic"
	"time"
)

// futexWait has no portable equivalent outside Linux; it degrades to a
// bounded spin with scheduler yields, still re-checked by the caller's loop.
func futexWait(addr *uint32, expect uint32, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if atomic.LoadUint32(addr) != expect {
			return
		}

		runtime.Gosched()
	}
}

// futexWakeAll is a no-op on platforms without futex; waiters discover the
// state change on their next spin iteration.
func futexWakeAll(addr *uint32) {}
