package hashmap

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmkv/shmkv/format"
)

func newTestMap(t *testing.T, opts ...Option) *Map {
	t.Helper()

	m, err := New(append([]Option{WithSharedMemory(false)}, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestMap_SetGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	require.NoError(t, m.Set(ctx, "alice", 30))
	require.NoError(t, m.Set(ctx, "bob", "builder"))
	require.NoError(t, m.Set(ctx, "pi", 3.25))

	v, ok, err := m.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30, v)

	v, ok, err = m.Get(ctx, "bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "builder", v)

	v, ok, err = m.Get(ctx, "pi")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3.25, v)
}

func TestMap_Get_MissingKey(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	v, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestMap_Has(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	ok, err := m.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", 1))

	ok, err = m.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMap_Set_OverwriteSmallerValue(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	require.NoError(t, m.Set(ctx, "k", "a long string value"))
	require.NoError(t, m.Set(ctx, "k", "short"))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "short", v)

	n, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMap_Set_OverwriteLargerValue(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	require.NoError(t, m.Set(ctx, "k", "short"))
	require.NoError(t, m.Set(ctx, "k", "a considerably longer replacement string"))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a considerably longer replacement string", v)

	n, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMap_NonStringKey_Canonicalized(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	key := map[string]any{"id": 1.0}
	require.NoError(t, m.Set(ctx, key, "value"))

	v, ok, err := m.Get(ctx, map[string]any{"id": 1.0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestMap_Delete(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	require.NoError(t, m.Set(ctx, "a", 1))
	require.NoError(t, m.Set(ctx, "b", 2))

	deleted, err := m.Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = m.Delete(ctx, "a")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := m.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMap_Clear(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	for i := range 10 {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), i))
	}

	require.NoError(t, m.Clear(ctx))

	n, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, ok, err := m.Get(ctx, "k0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMap_Size_TracksInsertsAndDeletes(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	for i := range 5 {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), i))
	}

	n, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = m.Delete(ctx, "k0")
	require.NoError(t, err)

	n, err = m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMap_Rehash_TriggeredByLoadFactor(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t, WithExpectedSize(8))

	const count = 200
	for i := range count {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("key-%d", i), i))
	}

	for i := range count {
		v, ok, err := m.Get(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}

	n, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, n)
}

func TestMap_DataRegionGrowth(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t, WithExpectedSize(4), WithAverageBytesPerValue(8))

	big := make([]byte, 0, 4096)
	for i := range 200 {
		big = append(big, byte(i))
	}
	value := string(big)

	for i := range 50 {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("blob-%d", i), value))
	}

	for i := range 50 {
		v, ok, err := m.Get(ctx, fmt.Sprintf("blob-%d", i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, value, v)
	}
}

func TestMap_Defragment_ReclaimsSpaceFromOverwrites(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t, WithExpectedSize(4), WithAverageBytesPerValue(256))

	long := "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
	for i := range 20 {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), long))
	}
	for i := range 20 {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), "s"))
	}
	for i := range 40 {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("fresh%d", i), long))
	}

	for i := range 20 {
		v, ok, err := m.Get(ctx, fmt.Sprintf("k%d", i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "s", v)
	}
}

func TestMap_ConcurrentReadersAndWriter(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	require.NoError(t, m.Set(ctx, "shared", 0))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, _, err := m.Get(ctx, "shared")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestMap_InvalidAverageBytesPerValue(t *testing.T) {
	_, err := New(WithAverageBytesPerValue(7))
	assert.Error(t, err)
}

func TestMap_ClosedMapReturnsErrClosed(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)

	require.NoError(t, m.Close())

	_, _, err := m.Get(ctx, "k")
	assert.Error(t, err)
}

func TestMap_ToTransferableState_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t)
	require.NoError(t, m.Set(ctx, "k", "v"))

	ts := m.ToTransferableState()

	m2, err := FromTransferableState(ts)
	require.NoError(t, err)

	v, ok, err := m2.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMap_GeneralCompression_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestMap(t, WithGeneralCompression(format.CompressionS2))

	payload := map[string]any{
		"tags": strings.Repeat("x", 256),
	}
	require.NoError(t, m.Set(ctx, "doc", payload))

	v, ok, err := m.Get(ctx, "doc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, v)
}

func TestMap_InvalidGeneralCompression(t *testing.T) {
	_, err := New(WithGeneralCompression(format.CompressionType(99)))
	assert.Error(t, err)
}
