package region

import (
	"sync/atomic"

	"github.com/shmkv/shmkv/endian"
)

// wireOrder is pinned to big-endian per spec §3.1, regardless of host byte
// order; region exposes no pluggable-endianness option the way package
// endian's engine does for other call sites, since every field in the
// binary layout is defined in a fixed byte order.
var wireOrder = endian.GetBigEndianEngine()

func beUint32(b []byte) uint32       { return wireOrder.Uint32(b) }
func bePutUint32(b []byte, v uint32) { wireOrder.PutUint32(b, v) }
func beUint16(b []byte) uint16       { return wireOrder.Uint16(b) }
func bePutUint16(b []byte, v uint16) { wireOrder.PutUint16(b, v) }

func atomicLoad32(p *uint32) uint32  { return atomic.LoadUint32(p) }
func atomicStore32(p *uint32, v uint32) { atomic.StoreUint32(p, v) }

func atomicAdd32(p *uint32, delta int32) uint32 {
	return atomic.AddUint32(p, uint32(delta))
}

func atomicCAS32(p *uint32, old, newVal uint32) bool {
	return atomic.CompareAndSwapUint32(p, old, newVal)
}
