package layout

// ArrayEntry is the fixed 8-byte header preceding a value record in an
// array's data region, per spec §3.5.
type ArrayEntry struct {
	EncoderID   uint32
	ValueLength uint32
}

// Bytes encodes the header into a freshly allocated ArrayEntryHeaderSize slice.
func (e ArrayEntry) Bytes() []byte {
	var b [ArrayEntryHeaderSize]byte
	e.WriteToSlice(b[:], 0)

	return b[:]
}

// WriteToSlice writes the header into data at offset and returns the offset
// immediately after it, i.e. where value bytes begin.
func (e ArrayEntry) WriteToSlice(data []byte, offset int) int {
	wireOrder.PutUint32(data[offset+ArrayEntryEncoderOff:], e.EncoderID)
	wireOrder.PutUint32(data[offset+ArrayEntryValueLengthOff:], e.ValueLength)

	return offset + ArrayEntryHeaderSize
}

// ParseArrayEntry reads an ArrayEntry header from data at offset.
func ParseArrayEntry(data []byte, offset int) ArrayEntry {
	return ArrayEntry{
		EncoderID:   wireOrder.Uint32(data[offset+ArrayEntryEncoderOff:]),
		ValueLength: wireOrder.Uint32(data[offset+ArrayEntryValueLengthOff:]),
	}
}

// ValueBytesRange returns the [start, end) byte range of e's value within
// data, given the offset e's header was read from.
func (e ArrayEntry) ValueBytesRange(offset int) (start, end int) {
	start = offset + ArrayEntryHeaderSize
	end = start + int(e.ValueLength)

	return start, end
}

// TotalSize returns the total footprint of this entry in D: header + value
// bytes, used to maintain used_space per spec §3.6.
func (e ArrayEntry) TotalSize() uint32 {
	return ArrayEntryHeaderSize + e.ValueLength
}
