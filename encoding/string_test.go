package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringEncoder_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    string
	}{
		{"empty", ""},
		{"ascii", "hello world"},
		{"utf8", "héllo wörld 日本語"},
	}

	e := StringEncoder{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.MaxLen(tt.v)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, len(tt.v))

			dst := make([]byte, len(tt.v))
			written, err := e.Encode(tt.v, dst)
			require.NoError(t, err)
			assert.Equal(t, len(tt.v), written)

			got, err := e.Decode(dst)
			require.NoError(t, err)
			assert.Equal(t, tt.v, got)
		})
	}
}

func TestStringEncoder_RejectsNonString(t *testing.T) {
	e := StringEncoder{}
	_, err := e.MaxLen(5)
	assert.Error(t, err)
}

func TestStringEncoder_RejectsShortDst(t *testing.T) {
	e := StringEncoder{}
	_, err := e.Encode("hello", make([]byte, 2))
	assert.Error(t, err)
}
