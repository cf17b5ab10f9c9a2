package rwlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmkv/shmkv/region"
)

func newTestLock(t *testing.T, shared bool, timeout time.Duration) (*Lock, region.Region) {
	t.Helper()

	r, err := region.New(32, shared)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return New(r, 12, 20, timeout), r
}

func TestLock_DegradedModeIsNoOp(t *testing.T) {
	l, r := newTestLock(t, false, time.Second)

	require.NoError(t, l.AcquireWrite(context.Background()))
	l.ReleaseWrite()
	require.NoError(t, l.AcquireRead(context.Background()))
	l.ReleaseRead()

	// Degraded mode never touches the lock words.
	assert.Equal(t, uint32(0), r.AtomicLoad32(12))
	assert.Equal(t, uint32(0), r.AtomicLoad32(20))
}

func TestLock_WriteThenRead_SequentialOnSharedRegion(t *testing.T) {
	l, r := newTestLock(t, true, time.Second)
	if !r.Shared() {
		t.Skip("platform does not support shared memory regions")
	}

	require.NoError(t, l.AcquireWrite(context.Background()))
	assert.Equal(t, WriteLocked, r.AtomicLoad32(12))
	l.ReleaseWrite()
	assert.Equal(t, Unlocked, r.AtomicLoad32(12))

	require.NoError(t, l.AcquireRead(context.Background()))
	assert.Equal(t, ReadLocked, r.AtomicLoad32(12))
	l.ReleaseRead()
	assert.Equal(t, Unlocked, r.AtomicLoad32(12))
}

func TestLock_MultipleReadersConcurrently(t *testing.T) {
	l, r := newTestLock(t, true, time.Second)
	if !r.Shared() {
		t.Skip("platform does not support shared memory regions")
	}

	require.NoError(t, l.AcquireRead(context.Background()))
	require.NoError(t, l.AcquireRead(context.Background()))
	assert.Equal(t, ReadLocked, r.AtomicLoad32(12))
	assert.Equal(t, uint32(2), r.AtomicLoad32(20))

	l.ReleaseRead()
	assert.Equal(t, ReadLocked, r.AtomicLoad32(12), "one reader remains")

	l.ReleaseRead()
	assert.Equal(t, Unlocked, r.AtomicLoad32(12))
}

func TestLock_WriteExcludesRead_TimesOut(t *testing.T) {
	l, r := newTestLock(t, true, 50*time.Millisecond)
	if !r.Shared() {
		t.Skip("platform does not support shared memory regions")
	}

	require.NoError(t, l.AcquireWrite(context.Background()))
	defer l.ReleaseWrite()

	err := l.AcquireRead(context.Background())
	assert.Error(t, err)
}

func TestLock_ContextCancellation(t *testing.T) {
	l, r := newTestLock(t, true, time.Second)
	if !r.Shared() {
		t.Skip("platform does not support shared memory regions")
	}

	require.NoError(t, l.AcquireWrite(context.Background()))
	defer l.ReleaseWrite()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.AcquireWrite(ctx)
	assert.Error(t, err)
}

func TestLock_WriterEventuallyAcquiresAfterReaderReleases(t *testing.T) {
	l, r := newTestLock(t, true, 2*time.Second)
	if !r.Shared() {
		t.Skip("platform does not support shared memory regions")
	}

	require.NoError(t, l.AcquireRead(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		l.ReleaseRead()
	}()

	require.NoError(t, l.AcquireWrite(context.Background()))
	l.ReleaseWrite()
	wg.Wait()
}
