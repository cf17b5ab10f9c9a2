package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericEncoder_IntRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{"positive int", 42},
		{"negative int", -7},
		{"zero", 0},
		{"int32", int32(1000000)},
		{"uint8", uint8(200)},
	}

	e := NumericEncoder{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.MaxLen(tt.v)
			require.NoError(t, err)
			assert.Equal(t, IntEncoderSize, n)

			dst := make([]byte, n)
			written, err := e.Encode(tt.v, dst)
			require.NoError(t, err)
			assert.Equal(t, IntEncoderSize, written)

			got, err := e.Decode(dst)
			require.NoError(t, err)
			assert.EqualValues(t, tt.v, got)
		})
	}
}

func TestNumericEncoder_FloatRoundTrip(t *testing.T) {
	e := NumericEncoder{}
	v := 3.14159

	n, err := e.MaxLen(v)
	require.NoError(t, err)
	assert.Equal(t, FloatEncoderSize, n)

	dst := make([]byte, n)
	written, err := e.Encode(v, dst)
	require.NoError(t, err)
	assert.Equal(t, FloatEncoderSize, written)

	got, err := e.Decode(dst)
	require.NoError(t, err)
	assert.InDelta(t, v, got, 1e-9)
}

func TestNumericEncoder_RejectsNonNumeric(t *testing.T) {
	e := NumericEncoder{}
	_, err := e.MaxLen("not a number")
	assert.Error(t, err)

	_, err = e.Encode("not a number", make([]byte, 16))
	assert.Error(t, err)
}

func TestNumericEncoder_Int32Overflow(t *testing.T) {
	e := NumericEncoder{}
	_, err := e.MaxLen(int64(1) << 40)
	assert.Error(t, err)
}

func TestNumericEncoder_RejectsShortDst(t *testing.T) {
	e := NumericEncoder{}
	_, err := e.Encode(5, make([]byte, 2))
	assert.Error(t, err)
}

func TestNumericEncoder_ID(t *testing.T) {
	assert.Equal(t, uint16(0), NumericEncoder{}.ID())
}
