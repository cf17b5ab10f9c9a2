// Package growth implements the data-region growth policy shared by the map
// and array cores, per spec §4.5: double while under the ceiling, then grow
// by a fixed additive step to bound peak memory.
package growth

import "github.com/shmkv/shmkv/layout"

// NextSize returns the next data-region size to grow to from current.
func NextSize(current int) int {
	if current <= 0 {
		return layout.InitialDataOffset
	}

	if current <= layout.GrowthDoublingCeiling {
		return current * 2
	}

	return current + layout.GrowthAdditiveStep
}

// GrowUntilFits returns the smallest size reachable by repeatedly applying
// NextSize to current that is at least current+need.
func GrowUntilFits(current, need int) int {
	target := current
	for target < current+need {
		next := NextSize(target)
		if next <= target {
			next = target + need
			break
		}

		target = next
	}

	return target
}

// ShouldDefragment reports whether an overflowing write should prefer
// in-place defragmentation over growth, per spec §4.5: the live ratio is
// below threshold and a defragmented layout would make room for need more
// bytes.
func ShouldDefragment(usedSpace, totalSize, need int) bool {
	if totalSize == 0 {
		return false
	}

	ratio := float64(usedSpace) / float64(totalSize)

	return ratio < layout.DefragmentLiveRatioThreshold && usedSpace+need < totalSize
}
