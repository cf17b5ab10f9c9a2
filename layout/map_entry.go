package layout

import (
	"github.com/shmkv/shmkv/endian"
)

// wireOrder is the fixed big-endian engine every field in this package's
// headers is encoded with, per spec §3.1.
var wireOrder = endian.GetBigEndianEngine()

// MapEntry is the fixed 20-byte header preceding a key+value record in a
// map's data region, per spec §3.3.
type MapEntry struct {
	NextOffset     uint32 // chain link in D; 0 = end
	KeyLength      uint32
	ValueLength    uint32
	KeyKind        uint16
	ValueEncoderID uint16
	Hash           uint32
}

// Bytes encodes the header into a freshly allocated MapEntryHeaderSize slice.
func (e MapEntry) Bytes() []byte {
	var b [MapEntryHeaderSize]byte
	e.WriteToSlice(b[:], 0)

	return b[:]
}

// WriteToSlice writes the header into data at offset and returns the offset
// immediately after it, i.e. where key bytes begin.
func (e MapEntry) WriteToSlice(data []byte, offset int) int {
	wireOrder.PutUint32(data[offset+MapEntryNextOffsetOff:], e.NextOffset)
	wireOrder.PutUint32(data[offset+MapEntryKeyLengthOff:], e.KeyLength)
	wireOrder.PutUint32(data[offset+MapEntryValueLengthOff:], e.ValueLength)
	wireOrder.PutUint16(data[offset+MapEntryKeyKindOff:], e.KeyKind)
	wireOrder.PutUint16(data[offset+MapEntryValueEncoderOff:], e.ValueEncoderID)
	wireOrder.PutUint32(data[offset+MapEntryHashOff:], e.Hash)

	return offset + MapEntryHeaderSize
}

// ParseMapEntry reads a MapEntry header from data at offset.
func ParseMapEntry(data []byte, offset int) MapEntry {
	return MapEntry{
		NextOffset:     wireOrder.Uint32(data[offset+MapEntryNextOffsetOff:]),
		KeyLength:      wireOrder.Uint32(data[offset+MapEntryKeyLengthOff:]),
		ValueLength:    wireOrder.Uint32(data[offset+MapEntryValueLengthOff:]),
		KeyKind:        wireOrder.Uint16(data[offset+MapEntryKeyKindOff:]),
		ValueEncoderID: wireOrder.Uint16(data[offset+MapEntryValueEncoderOff:]),
		Hash:           wireOrder.Uint32(data[offset+MapEntryHashOff:]),
	}
}

// SetNextOffset patches just the next_offset field of the header already
// written at offset in data, used when linking a bucket chain's tail without
// re-encoding the whole entry.
func SetNextOffset(data []byte, offset int, next uint32) {
	wireOrder.PutUint32(data[offset+MapEntryNextOffsetOff:], next)
}

// KeyBytesRange returns the [start, end) byte range of e's key within data,
// given the offset e's header was read from.
func (e MapEntry) KeyBytesRange(offset int) (start, end int) {
	start = offset + MapEntryHeaderSize
	end = start + int(e.KeyLength)

	return start, end
}

// ValueBytesRange returns the [start, end) byte range of e's value within
// data, given the offset e's header was read from.
func (e MapEntry) ValueBytesRange(offset int) (start, end int) {
	keyEnd := offset + MapEntryHeaderSize + int(e.KeyLength)

	return keyEnd, keyEnd + int(e.ValueLength)
}

// TotalSize returns the total footprint of this entry in D: header + key +
// value bytes, used to maintain used_space per spec §3.6.
func (e MapEntry) TotalSize() uint32 {
	return MapEntryHeaderSize + e.KeyLength + e.ValueLength
}
