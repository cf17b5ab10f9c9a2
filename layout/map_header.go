package layout

import "github.com/shmkv/shmkv/region"

// MapIndex is a typed view over a map's index region: the 24-byte header
// plus its bucket table, per spec §3.2. It does not own the region and
// performs no locking — callers hold the appropriate lock for the duration
// of any sequence of reads/writes that must be consistent.
type MapIndex struct {
	R region.Region
}

// InitMapIndex zeroes r's header fields and bucket table. r must already be
// sized for bucketCount buckets.
func InitMapIndex(r region.Region, bucketCount int) MapIndex {
	mi := MapIndex{R: r}
	mi.SetSize(0)
	mi.SetBucketsInUse(0)
	mi.SetFreeStart(InitialDataOffset)
	mi.R.AtomicStore32(MapLockStateOffset, 0)
	mi.R.AtomicStore32(MapReadCountOffset, 0)
	mi.SetUsedSpace(0)

	for i := range bucketCount {
		mi.SetBucket(i, 0)
	}

	return mi
}

func (mi MapIndex) Size() uint32           { return mi.R.Uint32(MapSizeOffset) }
func (mi MapIndex) SetSize(v uint32)       { mi.R.PutUint32(MapSizeOffset, v) }
func (mi MapIndex) BucketsInUse() uint32   { return mi.R.Uint32(MapBucketsInUseOffset) }
func (mi MapIndex) SetBucketsInUse(v uint32) {
	mi.R.PutUint32(MapBucketsInUseOffset, v)
}
func (mi MapIndex) FreeStart() uint32     { return mi.R.Uint32(MapFreeStartOffset) }
func (mi MapIndex) SetFreeStart(v uint32) { mi.R.PutUint32(MapFreeStartOffset, v) }
func (mi MapIndex) UsedSpace() uint32     { return mi.R.Uint32(MapUsedSpaceOffset) }
func (mi MapIndex) SetUsedSpace(v uint32) { mi.R.PutUint32(MapUsedSpaceOffset, v) }

// BucketCount reports how many buckets this index region holds.
func (mi MapIndex) BucketCount() int {
	return BucketCount(mi.R.Len())
}

// Bucket returns the entry offset stored in bucket i (0 = empty chain).
func (mi MapIndex) Bucket(i int) uint32 {
	return mi.R.Uint32(MapBucketTableOffset + i*4)
}

// SetBucket sets bucket i's entry offset.
func (mi MapIndex) SetBucket(i int, offset uint32) {
	mi.R.PutUint32(MapBucketTableOffset+i*4, offset)
}

// LoadFactorExceeded reports whether buckets_in_use / bucket_count has
// reached the rehash threshold, per spec §3.6/§4.3.3.
func (mi MapIndex) LoadFactorExceeded() bool {
	bc := mi.BucketCount()
	if bc == 0 {
		return true
	}

	return float64(mi.BucketsInUse())/float64(bc) >= LoadFactor
}
