// Package hash provides the hashing primitives used by the map and array
// cores. Bucket hashing (spec §4.3.1) uses FNV-1a-32 exactly as mandated —
// the algorithm is a literal correctness requirement (two execution contexts
// computing bucket(hash mod bucket_count) must agree bit-for-bit), so no
// general-purpose hash library is swapped in for it. A separate xxHash64
// fingerprint is kept for observability only (see Fingerprint).
package hash

import (
	"hash/fnv"

	"github.com/cespare/xxhash/v2"
)

// FNV1a32 computes the 32-bit FNV-1a hash of data, per spec §4.3.1.
func FNV1a32(data []byte) uint32 {
	h := fnv.New32a()
	h.Write(data) //nolint:errcheck // hash.Hash.Write never errors

	return h.Sum32()
}

// FNV1a32String is a convenience wrapper for the common case of a raw string
// key; it hashes the []byte conversion of s.
func FNV1a32String(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))

	return h.Sum32()
}

// Fingerprint computes an xxHash64 digest of one or more byte regions.
//
// This is a debug/observability helper only — it is never consulted by the
// map or array core for correctness, and it is not the bucket hash. It is
// meant to be logged alongside a transferable-state handoff so operators can
// tell, from a log line, whether two regions that moved between execution
// contexts still carry the content they are expected to.
func Fingerprint(regions ...[]byte) uint64 {
	d := xxhash.New()
	for _, r := range regions {
		_, _ = d.Write(r)
	}

	return d.Sum64()
}
