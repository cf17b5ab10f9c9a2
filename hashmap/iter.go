package hashmap

import (
	"context"
	"iter"

	"github.com/shmkv/shmkv/layout"
)

// Entries returns an iterator over all key/value pairs, per spec §4.3.7. The
// read lock is held for the entire iteration and released when the consumer
// stops ranging, including on an early break.
func (m *Map) Entries(ctx context.Context) (iter.Seq2[any, any], error) {
	if err := m.checkOpen(); err != nil {
		return nil, err
	}

	if err := m.lock.AcquireRead(ctx); err != nil {
		return nil, err
	}

	return func(yield func(any, any) bool) {
		lock := m.lock
		defer func() { lock.ReleaseRead() }()

		mi := layout.MapIndex{R: m.index}
		data := m.data.Bytes()
		bc := mi.BucketCount()

		for b := range bc {
			off := mi.Bucket(b)
			for off != 0 {
				e := layout.ParseMapEntry(data, int(off))

				ks, ke := e.KeyBytesRange(int(off))
				key, err := recoverKey(string(data[ks:ke]), e.KeyKind)
				if err != nil {
					return
				}

				val, err := m.decodeValueAt(off)
				if err != nil {
					return
				}

				if !yield(key, val) {
					return
				}

				off = e.NextOffset
			}
		}
	}, nil
}

// Keys returns an iterator over all keys, per spec §1's thin-façade scoping
// — a straightforward projection of Entries.
func (m *Map) Keys(ctx context.Context) (iter.Seq[any], error) {
	entries, err := m.Entries(ctx)
	if err != nil {
		return nil, err
	}

	return func(yield func(any) bool) {
		entries(func(k, _ any) bool { return yield(k) })
	}, nil
}

// Values returns an iterator over all values, per spec §1's thin-façade
// scoping — a straightforward projection of Entries.
func (m *Map) Values(ctx context.Context) (iter.Seq[any], error) {
	entries, err := m.Entries(ctx)
	if err != nil {
		return nil, err
	}

	return func(yield func(any) bool) {
		entries(func(_, v any) bool { return yield(v) })
	}, nil
}

// ForEach calls fn for every key/value pair, stopping at the first error it
// returns, per spec §1's thin-façade scoping.
func (m *Map) ForEach(ctx context.Context, fn func(key, value any) error) error {
	entries, err := m.Entries(ctx)
	if err != nil {
		return err
	}

	var ferr error
	entries(func(k, v any) bool {
		if err := fn(k, v); err != nil {
			ferr = err
			return false
		}

		return true
	})

	return ferr
}
