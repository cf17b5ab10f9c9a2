// Package hashmap implements the shared-memory-backed concurrent hash map
// of spec §3 and §4.3: a self-describing index region (bucket table, open
// addressing with chaining) paired with a bump-allocated data region holding
// key+value records, coordinated by package rwlock's single-writer/
// multi-reader discipline.
package hashmap

import (
	"context"
	"fmt"
	"time"

	"github.com/shmkv/shmkv/encoding"
	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/internal/growth"
	"github.com/shmkv/shmkv/internal/options"
	"github.com/shmkv/shmkv/internal/pool"
	"github.com/shmkv/shmkv/layout"
	"github.com/shmkv/shmkv/region"
	"github.com/shmkv/shmkv/rwlock"
	"github.com/shmkv/shmkv/transfer"
)

// Map is a concurrent, shared-memory-backed hash map, per spec §3.
type Map struct {
	index region.Region
	data  region.Region

	lock    *rwlock.Lock
	enc     *encoding.Builtins
	timeout time.Duration
	shared  bool
	closed  bool
}

// New constructs an empty Map. Defaults: 1024 expected entries, 256 average
// bytes per value, a 500ms lock timeout, and a preference for truly shared
// memory — all overridable via Option, per spec §6.
func New(opts ...Option) (*Map, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	bucketCount := bucketCountForExpectedSize(cfg.expectedSize)

	idx, err := region.New(layout.MapIndexSizeForBuckets(bucketCount), cfg.preferShared)
	if err != nil {
		return nil, err
	}

	dataSize := layout.InitialDataOffset + cfg.expectedSize*(layout.MapEntryHeaderSize+cfg.averageBytesPerValue)

	data, err := region.New(dataSize, cfg.preferShared)
	if err != nil {
		idx.Close()
		return nil, err
	}

	layout.InitMapIndex(idx, bucketCount)

	enc := encoding.NewBuiltins(cfg.generalCompression)
	if cfg.serializer != nil {
		enc.User = cfg.serializer
	}

	m := &Map{
		index:   idx,
		data:    data,
		lock:    rwlock.New(idx, layout.MapLockStateOffset, layout.MapReadCountOffset, cfg.lockTimeout),
		enc:     enc,
		timeout: cfg.lockTimeout,
		shared:  idx.Shared(),
	}

	return m, nil
}

// FromTransferableState reconstructs a Map over regions handed off by
// another execution context, per spec §4.6. It adopts the regions as-is; it
// does not reinitialize them.
func FromTransferableState(ts transfer.State, opts ...Option) (*Map, error) {
	if err := ts.Validate(transfer.KindMap); err != nil {
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

	m := &Map{
		index:   ts.Index,
		data:    ts.Data,
		lock:    rwlock.New(ts.Index, layout.MapLockStateOffset, layout.MapReadCountOffset, cfg.lockTimeout),
		enc:     enc,
		timeout: cfg.lockTimeout,
		shared:  ts.Index.Shared(),
	}

	return m, nil
}

// ToTransferableState produces the handoff envelope for this Map, per spec
// §4.6. The caller is responsible for ensuring no concurrent writer is
// active on either side once the handle changes hands.
func (m *Map) ToTransferableState() transfer.State {
	return transfer.State{Index: m.index, Data: m.data, Kind: transfer.KindMap}
}

// Close releases both of the Map's regions. Safe to call more than once.
func (m *Map) Close() error {
	if m.closed {
		return nil
	}

	m.closed = true

	err1 := m.index.Close()
	err2 := m.data.Close()
	if err1 != nil {
		return err1
	}

	return err2
}

func (m *Map) checkOpen() error {
	if m.closed {
		return errs.ErrClosed
	}

	return nil
}

// Size reports the number of entries currently stored.
func (m *Map) Size(ctx context.Context) (int, error) {
	if err := m.checkOpen(); err != nil {
		return 0, err
	}

	if err := m.lock.AcquireRead(ctx); err != nil {
		return 0, err
	}
	defer func() { m.lock.ReleaseRead() }()

	return int(layout.MapIndex{R: m.index}.Size()), nil
}

// Has reports whether key is present.
func (m *Map) Has(ctx context.Context, key any) (bool, error) {
	if err := m.checkOpen(); err != nil {
		return false, err
	}

	text, _, err := canonicalKey(key)
	if err != nil {
		return false, err
	}

	if err := m.lock.AcquireRead(ctx); err != nil {
		return false, err
	}
	defer func() { m.lock.ReleaseRead() }()

	_, _, found := m.lookup(text, bucketHash(text))

	return found, nil
}

// Get retrieves the value stored for key, per spec §4.3.2.
func (m *Map) Get(ctx context.Context, key any) (any, bool, error) {
	if err := m.checkOpen(); err != nil {
		return nil, false, err
	}

	text, _, err := canonicalKey(key)
	if err != nil {
		return nil, false, err
	}

	if err := m.lock.AcquireRead(ctx); err != nil {
		return nil, false, err
	}
	defer func() { m.lock.ReleaseRead() }()

	off, _, found := m.lookup(text, bucketHash(text))
	if !found {
		return nil, false, nil
	}

	v, err := m.decodeValueAt(off)
	if err != nil {
		return nil, false, err
	}

	return v, true, nil
}

func (m *Map) decodeValueAt(entryOffset uint32) (any, error) {
	data := m.data.Bytes()
	e := layout.ParseMapEntry(data, int(entryOffset))
	vs, ve := e.ValueBytesRange(int(entryOffset))

	enc, err := m.enc.ByID(e.ValueEncoderID)
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

// lookup walks the bucket chain for text/h, returning the matching entry's
// offset in D, its bucket index, and whether it was found.
func (m *Map) lookup(text string, h uint32) (offset uint32, bucketIdx int, found bool) {
	mi := layout.MapIndex{R: m.index}
	bc := mi.BucketCount()
	bucketIdx = int(h % uint32(bc))

	data := m.data.Bytes()
	off := mi.Bucket(bucketIdx)
	for off != 0 {
		e := layout.ParseMapEntry(data, int(off))
		if e.Hash == h {
			ks, ke := e.KeyBytesRange(int(off))
			if string(data[ks:ke]) == text {
				return off, bucketIdx, true
			}
		}

		off = e.NextOffset
	}

	return 0, bucketIdx, false
}

// Set stores value under key, overwriting any previous value, per spec
// §4.3.3.
func (m *Map) Set(ctx context.Context, key, value any) error {
	if err := m.checkOpen(); err != nil {
		return err
	}

	text, kind, err := canonicalKey(key)
	if err != nil {
		return err
	}

	if err := m.lock.AcquireWrite(ctx); err != nil {
		return err
	}
	defer func() { m.lock.ReleaseWrite() }()

	h := bucketHash(text)
	enc := m.enc.Select(value)

	maxLen, err := enc.MaxLen(value)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	mi := layout.MapIndex{R: m.index}

	off, bucketIdx, found := m.lookup(text, h)
	if found {
		existing := layout.ParseMapEntry(m.data.Bytes(), int(off))
		if maxLen <= int(existing.ValueLength) {
			return m.overwriteInPlace(existing, off, enc, value)
		}

		m.unlinkEntry(bucketIdx, off)
		mi.SetSize(mi.Size() - 1)
		mi.SetUsedSpace(mi.UsedSpace() - existing.TotalSize())
	}

	return m.insertEntry(bucketIdx, h, text, kind, enc, value, maxLen)
}

func (m *Map) overwriteInPlace(e layout.MapEntry, offset uint32, enc encoding.Encoder, value any) error {
	data := m.data.Bytes()
	vs, _ := e.ValueBytesRange(int(offset))

	n, err := enc.Encode(value, data[vs:vs+int(e.ValueLength)])
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	delta := int(e.ValueLength) - n
	e.ValueLength = uint32(n)
	e.ValueEncoderID = enc.ID()
	e.WriteToSlice(data, int(offset))

	mi := layout.MapIndex{R: m.index}
	mi.SetUsedSpace(mi.UsedSpace() - uint32(delta))

	return nil
}

func (m *Map) insertEntry(bucketIdx int, h uint32, text string, kind uint16, enc encoding.Encoder, value any, maxLen int) error {
	mi := layout.MapIndex{R: m.index}
	keyLen := len(text)
	needed := layout.MapEntryHeaderSize + keyLen + maxLen

	if err := m.ensureRoom(needed); err != nil {
		return err
	}

	data := m.data.Bytes()
	freeStart := int(mi.FreeStart())

	entry := layout.MapEntry{
		NextOffset:     0,
		KeyLength:      uint32(keyLen),
		ValueLength:    0,
		KeyKind:        kind,
		ValueEncoderID: enc.ID(),
		Hash:           h,
	}
	bodyOff := entry.WriteToSlice(data, freeStart)
	copy(data[bodyOff:bodyOff+keyLen], text)

	n, err := enc.Encode(value, data[bodyOff+keyLen:bodyOff+keyLen+maxLen])
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	entry.ValueLength = uint32(n)
	entry.WriteToSlice(data, freeStart)

	m.linkIntoBucket(bucketIdx, uint32(freeStart))

	total := layout.MapEntryHeaderSize + keyLen + n
	mi.SetFreeStart(uint32(freeStart + total))
	mi.SetSize(mi.Size() + 1)
	mi.SetUsedSpace(mi.UsedSpace() + uint32(total))

	if mi.LoadFactorExceeded() {
		return m.rehash()
	}

	return nil
}

func (m *Map) linkIntoBucket(bucketIdx int, offset uint32) {
	mi := layout.MapIndex{R: m.index}

	head := mi.Bucket(bucketIdx)
	if head == 0 {
		mi.SetBucket(bucketIdx, offset)
		mi.SetBucketsInUse(mi.BucketsInUse() + 1)

		return
	}

	data := m.data.Bytes()
	tail := head
	for {
		te := layout.ParseMapEntry(data, int(tail))
		if te.NextOffset == 0 {
			break
		}

		tail = te.NextOffset
	}

	layout.SetNextOffset(data, int(tail), offset)
}

// unlinkEntry splices target out of bucketIdx's chain and returns its parsed
// header, which the caller uses to update size/used_space bookkeeping.
func (m *Map) unlinkEntry(bucketIdx int, target uint32) layout.MapEntry {
	mi := layout.MapIndex{R: m.index}
	data := m.data.Bytes()
	e := layout.ParseMapEntry(data, int(target))

	head := mi.Bucket(bucketIdx)
	if head == target {
		mi.SetBucket(bucketIdx, e.NextOffset)
		if e.NextOffset == 0 {
			mi.SetBucketsInUse(mi.BucketsInUse() - 1)
		}

		return e
	}

	prev := head
	for {
		pe := layout.ParseMapEntry(data, int(prev))
		if pe.NextOffset == target {
			layout.SetNextOffset(data, int(prev), e.NextOffset)
			return e
		}

		prev = pe.NextOffset
	}
}

// Delete removes key, reporting whether it was present, per spec §4.3.4.
func (m *Map) Delete(ctx context.Context, key any) (bool, error) {
	if err := m.checkOpen(); err != nil {
		return false, err
	}

	text, _, err := canonicalKey(key)
	if err != nil {
		return false, err
	}

	if err := m.lock.AcquireWrite(ctx); err != nil {
		return false, err
	}
	defer func() { m.lock.ReleaseWrite() }()

	off, bucketIdx, found := m.lookup(text, bucketHash(text))
	if !found {
		return false, nil
	}

	e := m.unlinkEntry(bucketIdx, off)

	mi := layout.MapIndex{R: m.index}
	mi.SetSize(mi.Size() - 1)
	mi.SetUsedSpace(mi.UsedSpace() - e.TotalSize())

	return true, nil
}

// Clear removes all entries, per spec §4.3.5. The underlying regions are
// kept and reinitialized, not released.
func (m *Map) Clear(ctx context.Context) error {
	if err := m.checkOpen(); err != nil {
		return err
	}

	if err := m.lock.AcquireWrite(ctx); err != nil {
		return err
	}
	defer func() { m.lock.ReleaseWrite() }()

	mi := layout.MapIndex{R: m.index}
	bc := mi.BucketCount()
	for i := range bc {
		mi.SetBucket(i, 0)
	}

	mi.SetSize(0)
	mi.SetBucketsInUse(0)
	mi.SetFreeStart(layout.InitialDataOffset)
	mi.SetUsedSpace(0)

	return nil
}

// ensureRoom grows or defragments the data region so that need more bytes
// fit past the current free_start, per spec §4.5.
func (m *Map) ensureRoom(need int) error {
	mi := layout.MapIndex{R: m.index}
	if int(mi.FreeStart())+need <= m.data.Len() {
		return nil
	}

	if growth.ShouldDefragment(int(mi.UsedSpace()), m.data.Len(), need) {
		m.defragment()

		if int(mi.FreeStart())+need <= m.data.Len() {
			return nil
		}
	}

	return m.growData(need)
}

func (m *Map) growData(need int) error {
	mi := layout.MapIndex{R: m.index}
	newSize := growth.GrowUntilFits(m.data.Len(), need)

	newData, err := region.New(newSize, m.data.Shared())
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCapacityExhausted, err)
	}

	copy(newData.Bytes(), m.data.Bytes()[:mi.FreeStart()])

	old := m.data
	m.data = newData

	return old.Close()
}

// defragment repacks live entries contiguously from InitialDataOffset,
// walking the bucket table in order and rebuilding each chain's links, per
// spec §4.3.6/§4.5.
func (m *Map) defragment() {
	mi := layout.MapIndex{R: m.index}
	data := m.data.Bytes()
	scratch := make([]byte, len(data))

	writePos := layout.InitialDataOffset
	bc := mi.BucketCount()

	for b := range bc {
		cur := mi.Bucket(b)
		if cur == 0 {
			continue
		}

		newHead := writePos
		prevNew := -1

		for cur != 0 {
			e := layout.ParseMapEntry(data, int(cur))
			total := int(e.TotalSize())
			copy(scratch[writePos:writePos+total], data[cur:int(cur)+total])
			layout.SetNextOffset(scratch, writePos, 0)

			if prevNew >= 0 {
				layout.SetNextOffset(scratch, prevNew, uint32(writePos))
			}

			prevNew = writePos
			writePos += total
			cur = e.NextOffset
		}

		mi.SetBucket(b, uint32(newHead))
	}

	copy(data, scratch[:writePos])
	mi.SetFreeStart(uint32(writePos))
}

// rehash doubles the bucket table and relinks every entry into its new
// bucket, per spec §4.3.3/§3.6.
func (m *Map) rehash() error {
	mi := layout.MapIndex{R: m.index}
	oldBC := mi.BucketCount()
	newBC := oldBC * 2

	newIndex, err := region.New(layout.MapIndexSizeForBuckets(newBC), m.index.Shared())
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCapacityExhausted, err)
	}

	newMI := layout.InitMapIndex(newIndex, newBC)
	newMI.SetSize(mi.Size())
	newMI.SetFreeStart(mi.FreeStart())
	newMI.SetUsedSpace(mi.UsedSpace())

	data := m.data.Bytes()

	for b := range oldBC {
		cur := mi.Bucket(b)
		for cur != 0 {
			e := layout.ParseMapEntry(data, int(cur))
			next := e.NextOffset
			layout.SetNextOffset(data, int(cur), 0)

			newBucket := int(e.Hash % uint32(newBC))
			tail := newMI.Bucket(newBucket)
			if tail == 0 {
				newMI.SetBucket(newBucket, cur)
				newMI.SetBucketsInUse(newMI.BucketsInUse() + 1)
			} else {
				for {
					te := layout.ParseMapEntry(data, int(tail))
					if te.NextOffset == 0 {
						break
					}

					tail = te.NextOffset
				}

				layout.SetNextOffset(data, int(tail), cur)
			}

			cur = next
		}
	}

	old := m.index
	m.index = newIndex
	// The write lock held for the duration of this Set call was acquired on
	// old's lock_state word; no other holder can exist while we swap, so
	// rebuilding the Lock against the new region here is safe.
	m.lock = rwlock.New(m.index, layout.MapLockStateOffset, layout.MapReadCountOffset, m.timeout)

	return old.Close()
}
