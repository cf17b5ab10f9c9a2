//go:build !unix

package region

import "errors"

// newShared is unavailable on non-unix platforms; callers fall back to a
// process-local region per spec §4.1.
func newShared(size int) (Region, error) {
	return nil, errors.New("region: shared memory allocation is not supported on this platform")
}
