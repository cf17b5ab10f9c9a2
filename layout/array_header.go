package layout

import "github.com/shmkv/shmkv/region"

// ArrayIndex is a typed view over an array's index region: the 12-byte
// header plus its slot table, per spec §3.4.
type ArrayIndex struct {
	R region.Region
}

// InitArrayIndex zeroes r's header fields and slot table. r must already be
// sized for slotCount slots.
func InitArrayIndex(r region.Region, slotCount int) ArrayIndex {
	ai := ArrayIndex{R: r}
	ai.SetLength(0)
	ai.SetFreeStart(InitialDataOffset)
	ai.SetUsedSpace(0)

	for i := range slotCount {
		ai.SetSlot(i, SlotUninitialized)
	}

	return ai
}

func (ai ArrayIndex) Length() uint32        { return ai.R.Uint32(ArrayLengthOffset) }
func (ai ArrayIndex) SetLength(v uint32)    { ai.R.PutUint32(ArrayLengthOffset, v) }
func (ai ArrayIndex) FreeStart() uint32     { return ai.R.Uint32(ArrayFreeStartOffset) }
func (ai ArrayIndex) SetFreeStart(v uint32) { ai.R.PutUint32(ArrayFreeStartOffset, v) }
func (ai ArrayIndex) UsedSpace() uint32     { return ai.R.Uint32(ArrayUsedSpaceOffset) }
func (ai ArrayIndex) SetUsedSpace(v uint32) { ai.R.PutUint32(ArrayUsedSpaceOffset, v) }

// SlotCount reports how many slots this index region holds.
func (ai ArrayIndex) SlotCount() int {
	return ArraySlotCount(ai.R.Len())
}

// Slot returns the value stored in slot i: SlotUninitialized, SlotAbsent, or
// an entry offset in D.
func (ai ArrayIndex) Slot(i int) uint32 {
	return ai.R.Uint32(ArraySlotTableOffset + i*4)
}

// SetSlot sets slot i's value.
func (ai ArrayIndex) SetSlot(i int, v uint32) {
	ai.R.PutUint32(ArraySlotTableOffset+i*4, v)
}
