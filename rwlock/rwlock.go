// Package rwlock implements the single-writer/multi-reader lock described in
// spec §5, encoded as two atomic 32-bit words — lock_state and read_count —
// living inside a container's index region. The words' byte offsets are
// supplied by the caller (package layout defines them); this package only
// knows how to spin/wait/wake on whatever offsets it is given.
package rwlock

import (
	"context"
	"fmt"
	"time"

	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/region"
)

// Lock state values stored in the lock_state word, per spec §3.2/§5.
const (
	Unlocked    uint32 = 0
	WriteLocked uint32 = 1
	ReadLocked  uint32 = 2
)

// DefaultTimeout is the acquisition timeout applied when none is configured,
// per spec §5.
const DefaultTimeout = 500 * time.Millisecond

// Lock coordinates access to a region's lock_state/read_count words.
//
// On a region that is not truly shared (region.Region.Shared() == false),
// every Acquire/Release call is a no-op that always succeeds immediately —
// the degraded mode spec §5 mandates for process-local regions, where only
// the calling context can observe state.
type Lock struct {
	r        region.Region
	stateOff int
	countOff int
	timeout  time.Duration
	shared   bool
}

// New builds a Lock over the lock_state word at stateOff and the read_count
// word at countOff within r, both of which must be 4-byte aligned. timeout
// of 0 selects DefaultTimeout.
func New(r region.Region, stateOff, countOff int, timeout time.Duration) *Lock {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Lock{
		r:        r,
		stateOff: stateOff,
		countOff: countOff,
		timeout:  timeout,
		shared:   r.Shared(),
	}
}

// AcquireWrite blocks until the write lock is held, the context is
// cancelled, or timeout elapses.
func (l *Lock) AcquireWrite(ctx context.Context) error {
	if !l.shared {
		return nil
	}

	deadline := time.Now().Add(l.timeout)

	for {
		if l.r.AtomicCAS32(l.stateOff, Unlocked, WriteLocked) {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: write lock", errs.ErrLockTimeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: write lock: %w", errs.ErrLockTimeout, ctx.Err())
		default:
		}

		current := l.r.AtomicLoad32(l.stateOff)
		if current == Unlocked {
			continue
		}

		futexWait(l.r.Word32Addr(l.stateOff), current, capDuration(remaining))
	}
}

// ReleaseWrite releases a previously acquired write lock and wakes waiters.
func (l *Lock) ReleaseWrite() {
	if !l.shared {
		return
	}

	l.r.AtomicStore32(l.stateOff, Unlocked)
	futexWakeAll(l.r.Word32Addr(l.stateOff))
}

// AcquireRead blocks until a read lock is held, the context is cancelled, or
// timeout elapses.
func (l *Lock) AcquireRead(ctx context.Context) error {
	if !l.shared {
		return nil
	}

	deadline := time.Now().Add(l.timeout)

	for {
		current := l.r.AtomicLoad32(l.stateOff)
		if current != WriteLocked {
			break
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: read lock", errs.ErrLockTimeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: read lock: %w", errs.ErrLockTimeout, ctx.Err())
		default:
		}

		futexWait(l.r.Word32Addr(l.stateOff), current, capDuration(remaining))
	}

	prev := l.r.AtomicAdd32(l.countOff, 1) - 1
	if prev == 0 {
		l.r.AtomicStore32(l.stateOff, ReadLocked)
	}

	return nil
}

// ReleaseRead releases one reader's hold on the read lock, unlocking and
// waking waiters when the last reader leaves.
func (l *Lock) ReleaseRead() {
	if !l.shared {
		return
	}

	if l.r.AtomicAdd32(l.countOff, -1) == 0 {
		l.r.AtomicStore32(l.stateOff, Unlocked)
		futexWakeAll(l.r.Word32Addr(l.stateOff))
	}
}

func capDuration(d time.Duration) time.Duration {
	const maxWait = 50 * time.Millisecond
	if d > maxWait {
		return maxWait
	}

	return d
}
