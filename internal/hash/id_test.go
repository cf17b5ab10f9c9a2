package hash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFNV1a32_KnownVectors(t *testing.T) {
	// Reference vectors from the canonical FNV test suite (isthe.com/chongo/src/fnv).
	tests := []struct {
		name string
		data string
		want uint32
	}{
		{"empty", "", 0x811c9dc5},
		{"a", "a", 0xe40c292c},
		{"foobar", "foobar", 0xbf9cf968},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FNV1a32([]byte(tt.data)))
			assert.Equal(t, tt.want, FNV1a32String(tt.data))
		})
	}
}

func TestFNV1a32_DeterministicAndStable(t *testing.T) {
	s := randString(32)
	first := FNV1a32String(s)
	for range 10 {
		assert.Equal(t, first, FNV1a32String(s))
	}
}

func TestFNV1a32_BytesAndStringAgree(t *testing.T) {
	for range 20 {
		s := randString(16)
		assert.Equal(t, FNV1a32([]byte(s)), FNV1a32String(s))
	}
}

func TestFingerprint_DeterministicAcrossRegions(t *testing.T) {
	a := []byte("index-region-bytes")
	b := []byte("data-region-bytes")

	f1 := Fingerprint(a, b)
	f2 := Fingerprint(a, b)
	assert.Equal(t, f1, f2)

	f3 := Fingerprint(b, a)
	assert.NotEqual(t, f1, f3, "region order should matter for the fingerprint")
}

func randString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range b {
		b[i] = letters[seededRand.Intn(len(letters))]
	}

	return string(b)
}

func BenchmarkFNV1a32String(b *testing.B) {
	randStr := randString(20)
	b.ResetTimer()
	for b.Loop() {
		FNV1a32String(randStr)
	}
}
