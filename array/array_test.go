package array

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmkv/shmkv/format"
)

func newTestArray(t *testing.T, initial []any, opts ...Option) *Array {
	t.Helper()

	a, err := New(initial, append([]Option{WithSharedMemory(false)}, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() { _ = a.Close() })

	return a
}

func TestArray_PushAt(t *testing.T) {
	a := newTestArray(t, nil)

	require.NoError(t, a.Push("a"))
	require.NoError(t, a.Push("b"))
	require.NoError(t, a.Push("c"))

	assert.Equal(t, 3, a.Length())

	v, ok, err := a.At(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok, err = a.At(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestArray_At_OutOfRange(t *testing.T) {
	a := newTestArray(t, []any{"x"})

	_, ok, err := a.At(-1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = a.At(5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArray_Set_ExplicitAbsent(t *testing.T) {
	a := newTestArray(t, []any{1, 2, 3})

	require.NoError(t, a.Set(1, nil))

	_, ok, err := a.At(1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 3, a.Length())
}

func TestArray_Set_BeyondLengthGrows(t *testing.T) {
	a := newTestArray(t, nil)

	require.NoError(t, a.Set(5, "late"))
	assert.Equal(t, 6, a.Length())

	v, ok, err := a.At(5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "late", v)

	_, ok, err = a.At(2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArray_Delete_MiddleShiftsLeft(t *testing.T) {
	a := newTestArray(t, []any{"a", "b", "c"})

	require.NoError(t, a.Delete(1))

	assert.Equal(t, 2, a.Length())

	v, ok, err := a.At(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok, err = a.At(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestArray_PushPushPushDeleteSequence(t *testing.T) {
	a := newTestArray(t, nil)

	require.NoError(t, a.Push("a"))
	require.NoError(t, a.Push("b"))
	require.NoError(t, a.Push("c"))
	require.NoError(t, a.Delete(1))

	v, _, err := a.At(0)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, _, err = a.At(1)
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	assert.Equal(t, 2, a.Length())
}

func TestArray_Pop(t *testing.T) {
	a := newTestArray(t, []any{1, 2, 3})

	v, ok, err := a.Pop()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, a.Length())

	require.NoError(t, a.Delete(0))
	require.NoError(t, a.Delete(0))

	_, ok, err = a.Pop()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArray_Shift(t *testing.T) {
	a := newTestArray(t, []any{1, 2, 3})

	v, ok, err := a.Shift()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, a.Length())

	v, ok, err = a.At(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestArray_Unshift(t *testing.T) {
	a := newTestArray(t, []any{3})

	require.NoError(t, a.Unshift(1, 2))

	vals, err := a.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, vals)
}

func TestArray_InsertAt_Middle(t *testing.T) {
	a := newTestArray(t, []any{"a", "c"})

	require.NoError(t, a.InsertAt(1, "b"))

	vals, err := a.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, vals)
}

func TestArray_Construct_WithInitialObjects_RoundTrip(t *testing.T) {
	records := []any{
		map[string]any{"id": 1.0, "name": "a"},
		map[string]any{"id": 2.0, "name": "b"},
		map[string]any{"id": 3.0, "name": "c"},
	}

	a := newTestArray(t, records)
	for i, want := range records {
		got, ok, err := a.At(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestArray_Compact_PreservesContents(t *testing.T) {
	a := newTestArray(t, nil)

	long := "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
	for range 10 {
		require.NoError(t, a.Push(long))
	}
	for i := range 10 {
		require.NoError(t, a.Set(i, "s"))
	}
	for range 20 {
		require.NoError(t, a.Push(long))
	}

	a.Compact()

	for i := range 10 {
		v, ok, err := a.At(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "s", v)
	}
}

func TestArray_DataRegionGrowth(t *testing.T) {
	a := newTestArray(t, nil)

	big := make([]byte, 3000)
	value := string(big)

	for range 5 {
		require.NoError(t, a.Push(value))
	}

	for i := range 5 {
		v, ok, err := a.At(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, value, v)
	}
}

func TestArray_SlotTableGrowth(t *testing.T) {
	a := newTestArray(t, nil)

	for i := range 200 {
		require.NoError(t, a.Push(i))
	}

	assert.Equal(t, 200, a.Length())

	for i := range 200 {
		v, ok, err := a.At(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestArray_ToTransferableState_RoundTrip(t *testing.T) {
	a := newTestArray(t, []any{"x", "y"})

	ts := a.ToTransferableState()

	a2, err := FromTransferableState(ts)
	require.NoError(t, err)

	v, ok, err := a2.At(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestArray_ClosedReturnsErrClosed(t *testing.T) {
	a := newTestArray(t, nil)
	require.NoError(t, a.Close())

	_, _, err := a.At(0)
	assert.Error(t, err)
}

func TestArray_GeneralCompression_RoundTrip(t *testing.T) {
	a := newTestArray(t, nil, WithGeneralCompression(format.CompressionLZ4))

	payload := map[string]any{"blob": strings.Repeat("y", 256)}
	require.NoError(t, a.Push(payload))

	v, ok, err := a.At(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, v)
}

func TestArray_InvalidGeneralCompression(t *testing.T) {
	_, err := New(nil, WithGeneralCompression(format.CompressionType(99)))
	assert.Error(t, err)
}
