package hashmap

import (
	"encoding/json"
	"fmt"

	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/internal/hash"
	"github.com/shmkv/shmkv/layout"
)

// canonicalKey reduces an arbitrary key to the textual form that gets
// hashed and stored, per spec §4.3.1: raw strings pass through unchanged;
// everything else is canonicalized via the same stable structural
// stringification the general-value encoder uses, so two calls with an
// equal-but-distinct key value (e.g. two maps with the same entries)
// collapse to the same bucket.
func canonicalKey(key any) (text string, kind uint16, err error) {
	if s, ok := key.(string); ok {
		return s, layout.KeyKindRaw, nil
	}

	raw, err := json.Marshal(key)
	if err != nil {
		return "", 0, fmt.Errorf("%w: key %v cannot be canonicalized: %w", errs.ErrInvalidConfig, key, err)
	}

	return string(raw), layout.KeyKindStringified, nil
}

// recoverKey reverses canonicalKey for iteration: a raw key comes back
// as-is; a stringified key is re-parsed into its generic JSON shape.
func recoverKey(text string, kind uint16) (any, error) {
	if kind == layout.KeyKindRaw {
		return text, nil
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptRegion, err)
	}

	return v, nil
}

// bucketHash computes the FNV-1a-32 bucket hash for a canonicalized key
// string, per spec §4.3.1.
func bucketHash(text string) uint32 {
	return hash.FNV1a32String(text)
}
