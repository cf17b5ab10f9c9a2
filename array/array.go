// Package array implements the shared-memory-backed dense indexed array of
// spec §3/§4.4: a slot table over an index region paired with a
// bump-allocated data region holding value records.
//
// Per the array lock policy decision recorded in SPEC_FULL.md/DESIGN.md,
// Array takes no internal locks — mirroring the source's own array path —
// and requires single-context ownership for concurrent use.
package array

import (
	"fmt"

	"github.com/shmkv/shmkv/encoding"
	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/internal/growth"
	"github.com/shmkv/shmkv/internal/options"
	"github.com/shmkv/shmkv/internal/pool"
	"github.com/shmkv/shmkv/layout"
	"github.com/shmkv/shmkv/region"
	"github.com/shmkv/shmkv/transfer"
)

// Array is a dense, shared-memory-backed indexed sequence, per spec §3/§4.4.
type Array struct {
	index region.Region
	data  region.Region

	enc    *encoding.Builtins
	closed bool
}

// New constructs an Array, optionally pre-populated with initial values in
// order (each appended via Push), per spec §6. Initial region sizes are
// 256 bytes for the index (61 slots after the 12-byte header) and 2048
// bytes for the data region, matching the source's own defaults.
func New(initial []any, opts ...Option) (*Array, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	idx, err := region.New(layout.ArrayInitialIndexSize, cfg.preferShared)
	if err != nil {
		return nil, err
	}

	data, err := region.New(layout.ArrayInitialDataSize, cfg.preferShared)
	if err != nil {
		idx.Close()
		return nil, err
	}

	layout.InitArrayIndex(idx, layout.ArraySlotCount(layout.ArrayInitialIndexSize))

	enc := encoding.NewBuiltins(cfg.generalCompression)
	if cfg.serializer != nil {
		enc.User = cfg.serializer
	}

	a := &Array{index: idx, data: data, enc: enc}

	for _, v := range initial {
		if err := a.Push(v); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// FromTransferableState reconstructs an Array over regions handed off by
// another execution context, per spec §4.6. It adopts the regions as-is.
func FromTransferableState(ts transfer.State, opts ...Option) (*Array, error) {
	if err := ts.Validate(transfer.KindArray); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	enc := encoding.NewBuiltins(cfg.generalCompression)
	if cfg.serializer != nil {
		enc.User = cfg.serializer
	}

	return &Array{index: ts.Index, data: ts.Data, enc: enc}, nil
}

// ToTransferableState produces the handoff envelope for this Array, per
// spec §4.6.
func (a *Array) ToTransferableState() transfer.State {
	return transfer.State{Index: a.index, Data: a.data, Kind: transfer.KindArray}
}

// Close releases both of the Array's regions. Safe to call more than once.
func (a *Array) Close() error {
	if a.closed {
		return nil
	}

	a.closed = true

	err1 := a.index.Close()
	err2 := a.data.Close()
	if err1 != nil {
		return err1
	}

	return err2
}

func (a *Array) checkOpen() error {
	if a.closed {
		return errs.ErrClosed
	}

	return nil
}

// Length reports the current length of the array.
func (a *Array) Length() int {
	return int(layout.ArrayIndex{R: a.index}.Length())
}

// At retrieves the value at index i, per spec §4.4.3. Reports absent when i
// is out of range or the slot holds the explicit-absent sentinel.
func (a *Array) At(i int) (any, bool, error) {
	if err := a.checkOpen(); err != nil {
		return nil, false, err
	}

	ai := layout.ArrayIndex{R: a.index}
	if i < 0 || i >= int(ai.Length()) {
		return nil, false, nil
	}

	slot := ai.Slot(i)
	if slot == layout.SlotUninitialized || slot == layout.SlotAbsent {
		return nil, false, nil
	}

	v, err := a.decodeValueAt(slot)
	if err != nil {
		return nil, false, err
	}

	return v, true, nil
}

func (a *Array) decodeValueAt(entryOffset uint32) (any, error) {
	data := a.data.Bytes()
	e := layout.ParseArrayEntry(data, int(entryOffset))
	vs, ve := e.ValueBytesRange(int(entryOffset))

	enc, err := a.enc.ByID(uint16(e.EncoderID))
	if err != nil {
		return nil, err
	}

	scratch := pool.GetScratch(ve - vs)
	defer pool.PutScratch(scratch)
	scratch.SetLength(ve - vs)
	copy(scratch.Bytes(), data[vs:ve])

	v, err := enc.Decode(scratch.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	return v, nil
}

// Set writes value at index i, growing the slot table and the length as
// needed when i ≥ the current length, per spec §4.4.1/§4.4.2. A nil value
// stores the explicit-absent sentinel without touching D.
func (a *Array) Set(i int, value any) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	if i < 0 {
		return fmt.Errorf("%w: negative index %d", errs.ErrIndexOutOfRange, i)
	}

	if err := a.ensureSlotCapacity(i + 1); err != nil {
		return err
	}

	ai := layout.ArrayIndex{R: a.index}
	if prev := ai.Slot(i); prev != layout.SlotUninitialized && prev != layout.SlotAbsent {
		a.freeEntry(prev)
	}

	if value == nil {
		ai.SetSlot(i, layout.SlotAbsent)
	} else {
		enc := a.enc.Select(value)

		maxLen, err := enc.MaxLen(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
		}

		offset, err := a.appendEntry(enc, value, maxLen)
		if err != nil {
			return err
		}

		ai.SetSlot(i, offset)
	}

	if i >= int(ai.Length()) {
		ai.SetLength(uint32(i + 1))
	}

	return nil
}

// freeEntry subtracts a live entry's footprint from used_space; its bytes
// in D remain as dead weight until the next defragmentation, per spec
// §4.4.2/§4.4.4.
func (a *Array) freeEntry(offset uint32) {
	ai := layout.ArrayIndex{R: a.index}
	e := layout.ParseArrayEntry(a.data.Bytes(), int(offset))
	ai.SetUsedSpace(ai.UsedSpace() - e.TotalSize())
}

func (a *Array) appendEntry(enc encoding.Encoder, value any, maxLen int) (uint32, error) {
	ai := layout.ArrayIndex{R: a.index}
	needed := layout.ArrayEntryHeaderSize + maxLen

	if err := a.ensureRoom(needed); err != nil {
		return 0, err
	}

	data := a.data.Bytes()
	freeStart := int(ai.FreeStart())

	entry := layout.ArrayEntry{EncoderID: uint32(enc.ID())}
	bodyOff := entry.WriteToSlice(data, freeStart)

	n, err := enc.Encode(value, data[bodyOff:bodyOff+maxLen])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	entry.ValueLength = uint32(n)
	entry.WriteToSlice(data, freeStart)

	total := layout.ArrayEntryHeaderSize + n
	ai.SetFreeStart(uint32(freeStart + total))
	ai.SetUsedSpace(ai.UsedSpace() + uint32(total))

	return uint32(freeStart), nil
}

// ensureSlotCapacity grows the index region (doubling the slot table) until
// it holds at least n slots, per spec §4.4.1.
func (a *Array) ensureSlotCapacity(n int) error {
	ai := layout.ArrayIndex{R: a.index}
	if ai.SlotCount() >= n {
		return nil
	}

	newSlotCount := ai.SlotCount()
	if newSlotCount == 0 {
		newSlotCount = 1
	}

	for newSlotCount < n {
		newSlotCount *= 2
	}

	newIndex, err := region.New(layout.ArrayIndexSizeForSlots(newSlotCount), a.index.Shared())
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCapacityExhausted, err)
	}

	newAI := layout.InitArrayIndex(newIndex, newSlotCount)
	newAI.SetLength(ai.Length())
	newAI.SetFreeStart(ai.FreeStart())
	newAI.SetUsedSpace(ai.UsedSpace())

	oldLen := int(ai.Length())
	for i := range oldLen {
		newAI.SetSlot(i, ai.Slot(i))
	}

	old := a.index
	a.index = newIndex

	return old.Close()
}

func (a *Array) ensureRoom(need int) error {
	ai := layout.ArrayIndex{R: a.index}
	if int(ai.FreeStart())+need <= a.data.Len() {
		return nil
	}

	if growth.ShouldDefragment(int(ai.UsedSpace()), a.data.Len(), need) {
		a.Compact()

		if int(ai.FreeStart())+need <= a.data.Len() {
			return nil
		}
	}

	return a.growData(need)
}

func (a *Array) growData(need int) error {
	ai := layout.ArrayIndex{R: a.index}
	newSize := growth.GrowUntilFits(a.data.Len(), need)

	newData, err := region.New(newSize, a.data.Shared())
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCapacityExhausted, err)
	}

	copy(newData.Bytes(), a.data.Bytes()[:ai.FreeStart()])

	old := a.data
	a.data = newData

	return old.Close()
}

// Compact defragments the data region, per spec §4.4.5: walks positions
// 0..length-1 in order, repacking each live entry contiguously and updating
// its slot to the new offset.
// Compact leaves free_start at InitialDataOffset plus the repacked live
// bytes, not bare used_space: entry offsets below InitialDataOffset would
// collide with the SlotUninitialized/SlotAbsent sentinels.
func (a *Array) Compact() {
	ai := layout.ArrayIndex{R: a.index}
	data := a.data.Bytes()
	scratch := make([]byte, len(data))

	writePos := layout.InitialDataOffset
	length := int(ai.Length())

	for i := range length {
		slot := ai.Slot(i)
		if slot == layout.SlotUninitialized || slot == layout.SlotAbsent {
			continue
		}

		e := layout.ParseArrayEntry(data, int(slot))
		total := int(e.TotalSize())
		copy(scratch[writePos:writePos+total], data[int(slot):int(slot)+total])
		ai.SetSlot(i, uint32(writePos))
		writePos += total
	}

	copy(data, scratch[:writePos])
	ai.SetFreeStart(uint32(writePos))
}

// Push appends value at the current length, per spec §4.4.2.
func (a *Array) Push(value any) error {
	return a.Set(a.Length(), value)
}

// PushAll appends each value in order.
func (a *Array) PushAll(values ...any) error {
	for _, v := range values {
		if err := a.Push(v); err != nil {
			return err
		}
	}

	return nil
}

// Pop removes and returns the last element, reporting absent for an empty
// array.
func (a *Array) Pop() (any, bool, error) {
	length := a.Length()
	if length == 0 {
		return nil, false, nil
	}

	v, ok, err := a.At(length - 1)
	if err != nil {
		return nil, false, err
	}

	if err := a.Delete(length - 1); err != nil {
		return nil, false, err
	}

	return v, ok, nil
}

// Shift removes and returns the first element, shifting all remaining
// elements left by one.
func (a *Array) Shift() (any, bool, error) {
	if a.Length() == 0 {
		return nil, false, nil
	}

	v, ok, err := a.At(0)
	if err != nil {
		return nil, false, err
	}

	if err := a.Delete(0); err != nil {
		return nil, false, err
	}

	return v, ok, nil
}

// Unshift inserts values at the front, shifting all existing elements right.
func (a *Array) Unshift(values ...any) error {
	for i, v := range values {
		if err := a.InsertAt(i, v); err != nil {
			return err
		}
	}

	return nil
}

// InsertAt inserts value at index, shifting slot offsets at positions ≥
// index one slot to the right, per spec §4.4.2's middle-of-array insertion
// note.
func (a *Array) InsertAt(index int, value any) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	length := a.Length()
	if index < 0 || index > length {
		return fmt.Errorf("%w: insert index %d, length %d", errs.ErrIndexOutOfRange, index, length)
	}

	if err := a.ensureSlotCapacity(length + 1); err != nil {
		return err
	}

	ai := layout.ArrayIndex{R: a.index}
	for i := length; i > index; i-- {
		ai.SetSlot(i, ai.Slot(i-1))
	}
	ai.SetSlot(index, layout.SlotUninitialized)
	ai.SetLength(uint32(length + 1))

	return a.Set(index, value)
}

// Delete removes the element at index, shifting slot offsets at positions >
// index one slot to the left, per spec §4.4.4.
func (a *Array) Delete(index int) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	ai := layout.ArrayIndex{R: a.index}
	length := int(ai.Length())
	if index < 0 || index >= length {
		return fmt.Errorf("%w: delete index %d, length %d", errs.ErrIndexOutOfRange, index, length)
	}

	if slot := ai.Slot(index); slot != layout.SlotUninitialized && slot != layout.SlotAbsent {
		a.freeEntry(slot)
	}

	for i := index; i < length-1; i++ {
		ai.SetSlot(i, ai.Slot(i+1))
	}
	ai.SetSlot(length-1, layout.SlotUninitialized)
	ai.SetLength(uint32(length - 1))

	return nil
}
