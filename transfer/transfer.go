// Package transfer implements the transferable state envelope from spec
// §4.6: a tagged handle over a container's two regions that another
// execution context can adopt without copying.
package transfer

import (
	"fmt"

	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/internal/hash"
	"github.com/shmkv/shmkv/region"
)

// Kind identifies which container a State was produced by.
type Kind string

const (
	KindMap   Kind = "map"
	KindArray Kind = "array"
)

// State is the `{index_region, data_region, kind}` triple of spec §4.6.
type State struct {
	Index region.Region
	Data  region.Region
	Kind  Kind
}

// Validate checks that a received State matches the kind the receiving
// constructor expects, per spec §4.6/§7.3.
func (s State) Validate(want Kind) error {
	if s.Kind != want {
		return fmt.Errorf("%w: got %q, want %q", errs.ErrInvalidHandoff, s.Kind, want)
	}

	return nil
}

// Fingerprint computes a debug/observability digest over both regions'
// current bytes — see package hash's doc comment for why this is never
// consulted for correctness.
func (s State) Fingerprint() uint64 {
	return hash.Fingerprint(s.Index.Bytes(), s.Data.Bytes())
}
