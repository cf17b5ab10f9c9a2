package array

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/shmkv/shmkv/errs"
)

// These are the thin surface façade methods spec §1 scopes out as
// straightforward pass-throughs over At/Set/Length; none carries its own
// invariants beyond what those primitives already enforce.

// ForEach calls fn for index, value of every present element in order,
// stopping at the first error fn returns.
func (a *Array) ForEach(fn func(index int, value any) error) error {
	for i := range a.Length() {
		v, ok, err := a.At(i)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := fn(i, v); err != nil {
			return err
		}
	}

	return nil
}

// Map applies fn to every present element and returns the results in a new
// slice, skipping absent slots like ForEach.
func (a *Array) Map(fn func(index int, value any) (any, error)) ([]any, error) {
	out := make([]any, 0, a.Length())

	err := a.ForEach(func(i int, v any) error {
		mapped, err := fn(i, v)
		if err != nil {
			return err
		}

		out = append(out, mapped)

		return nil
	})

	return out, err
}

// Filter returns the present elements for which fn reports true.
func (a *Array) Filter(fn func(index int, value any) (bool, error)) ([]any, error) {
	var out []any

	err := a.ForEach(func(i int, v any) error {
		keep, err := fn(i, v)
		if err != nil {
			return err
		}

		if keep {
			out = append(out, v)
		}

		return nil
	})

	return out, err
}

// Every reports whether fn is true for every present element.
func (a *Array) Every(fn func(index int, value any) (bool, error)) (bool, error) {
	result := true

	err := a.ForEach(func(i int, v any) error {
		ok, err := fn(i, v)
		if err != nil {
			return err
		}

		if !ok {
			result = false
			return errStopIteration
		}

		return nil
	})
	if err != nil && err != errStopIteration {
		return false, err
	}

	return result, nil
}

// Some reports whether fn is true for at least one present element.
func (a *Array) Some(fn func(index int, value any) (bool, error)) (bool, error) {
	found := false

	err := a.ForEach(func(i int, v any) error {
		ok, err := fn(i, v)
		if err != nil {
			return err
		}

		if ok {
			found = true
			return errStopIteration
		}

		return nil
	})
	if err != nil && err != errStopIteration {
		return false, err
	}

	return found, nil
}

var errStopIteration = fmt.Errorf("array: internal early-stop sentinel")

// Reduce folds over present elements from the front. If hasInitial is false
// and the array has no present element, it reports errs.ErrEmptyReduce.
func (a *Array) Reduce(fn func(acc, value any, index int) (any, error), initial any, hasInitial bool) (any, error) {
	acc := initial
	started := hasInitial

	err := a.ForEach(func(i int, v any) error {
		if !started {
			acc = v
			started = true

			return nil
		}

		next, err := fn(acc, v, i)
		if err != nil {
			return err
		}

		acc = next

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !started {
		return nil, errs.ErrEmptyReduce
	}

	return acc, nil
}

// ReduceRight folds over present elements from the back.
func (a *Array) ReduceRight(fn func(acc, value any, index int) (any, error), initial any, hasInitial bool) (any, error) {
	acc := initial
	started := hasInitial

	for i := a.Length() - 1; i >= 0; i-- {
		v, ok, err := a.At(i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if !started {
			acc = v
			started = true

			continue
		}

		next, err := fn(acc, v, i)
		if err != nil {
			return nil, err
		}

		acc = next
	}

	if !started {
		return nil, errs.ErrEmptyReduce
	}

	return acc, nil
}

// Join concatenates present elements' string forms with sep between them.
func (a *Array) Join(sep string) (string, error) {
	var b strings.Builder

	first := true

	err := a.ForEach(func(_ int, v any) error {
		if !first {
			b.WriteString(sep)
		}
		first = false
		fmt.Fprint(&b, v)

		return nil
	})

	return b.String(), err
}

// Entries returns a lazy sequence of (index, value) over present elements.
func (a *Array) Entries() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i := range a.Length() {
			v, ok, err := a.At(i)
			if err != nil || !ok {
				continue
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Keys returns a lazy sequence of present indices.
func (a *Array) Keys() iter.Seq[int] {
	return func(yield func(int) bool) {
		a.Entries()(func(i int, _ any) bool { return yield(i) })
	}
}

// Values returns a lazy sequence of present values.
func (a *Array) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		a.Entries()(func(_ int, v any) bool { return yield(v) })
	}
}

// Find returns the first present element for which fn is true.
func (a *Array) Find(fn func(index int, value any) (bool, error)) (any, bool, error) {
	var result any

	found := false

	err := a.ForEach(func(i int, v any) error {
		ok, err := fn(i, v)
		if err != nil {
			return err
		}

		if ok {
			result = v
			found = true

			return errStopIteration
		}

		return nil
	})
	if err != nil && err != errStopIteration {
		return nil, false, err
	}

	return result, found, nil
}

// FindIndex returns the index of the first present element for which fn is
// true, or -1.
func (a *Array) FindIndex(fn func(index int, value any) (bool, error)) (int, error) {
	result := -1

	err := a.ForEach(func(i int, v any) error {
		ok, err := fn(i, v)
		if err != nil {
			return err
		}

		if ok {
			result = i
			return errStopIteration
		}

		return nil
	})
	if err != nil && err != errStopIteration {
		return -1, err
	}

	return result, nil
}

// FindLast returns the last present element for which fn is true.
func (a *Array) FindLast(fn func(index int, value any) (bool, error)) (any, bool, error) {
	for i := a.Length() - 1; i >= 0; i-- {
		v, ok, err := a.At(i)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}

		match, err := fn(i, v)
		if err != nil {
			return nil, false, err
		}
		if match {
			return v, true, nil
		}
	}

	return nil, false, nil
}

// FindLastIndex returns the index of the last present element for which fn
// is true, or -1.
func (a *Array) FindLastIndex(fn func(index int, value any) (bool, error)) (int, error) {
	for i := a.Length() - 1; i >= 0; i-- {
		v, ok, err := a.At(i)
		if err != nil {
			return -1, err
		}
		if !ok {
			continue
		}

		match, err := fn(i, v)
		if err != nil {
			return -1, err
		}
		if match {
			return i, nil
		}
	}

	return -1, nil
}

// FlatMap applies fn to every present element and flattens the resulting
// slices into one.
func (a *Array) FlatMap(fn func(index int, value any) ([]any, error)) ([]any, error) {
	var out []any

	err := a.ForEach(func(i int, v any) error {
		parts, err := fn(i, v)
		if err != nil {
			return err
		}

		out = append(out, parts...)

		return nil
	})

	return out, err
}

// ToSlice materializes all present values into a plain slice, in index
// order, skipping absent/uninitialized slots.
func (a *Array) ToSlice() ([]any, error) {
	out := make([]any, 0, a.Length())

	err := a.ForEach(func(_ int, v any) error {
		out = append(out, v)
		return nil
	})

	return out, err
}

// Slice returns the present values in [start, end), per standard slice
// semantics (negative/out-of-range bounds are clamped).
func (a *Array) Slice(start, end int) ([]any, error) {
	length := a.Length()
	start = clamp(start, 0, length)
	end = clamp(end, 0, length)

	if end < start {
		end = start
	}

	out := make([]any, 0, end-start)
	for i := start; i < end; i++ {
		v, ok, err := a.At(i)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}

	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

// Splice removes deleteCount elements starting at start and inserts items in
// their place, returning the removed elements.
func (a *Array) Splice(start, deleteCount int, items ...any) ([]any, error) {
	length := a.Length()
	start = clamp(start, 0, length)
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > length {
		deleteCount = length - start
	}

	removed := make([]any, 0, deleteCount)
	for i := range deleteCount {
		v, ok, err := a.At(start + i)
		if err != nil {
			return nil, err
		}
		if ok {
			removed = append(removed, v)
		}
	}

	for range deleteCount {
		if err := a.Delete(start); err != nil {
			return nil, err
		}
	}

	for i, v := range items {
		if err := a.InsertAt(start+i, v); err != nil {
			return nil, err
		}
	}

	return removed, nil
}

// Concat returns a new plain slice containing this array's present values
// followed by others' elements, in order.
func (a *Array) Concat(others ...[]any) ([]any, error) {
	out, err := a.ToSlice()
	if err != nil {
		return nil, err
	}

	for _, o := range others {
		out = append(out, o...)
	}

	return out, nil
}

// Reverse reverses the array's elements in place.
func (a *Array) Reverse() error {
	vals, err := a.ToSlice()
	if err != nil {
		return err
	}

	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}

	return a.replaceAll(vals)
}

// ToReversed returns a new reversed plain slice without mutating the array.
func (a *Array) ToReversed() ([]any, error) {
	vals, err := a.ToSlice()
	if err != nil {
		return nil, err
	}

	out := make([]any, len(vals))
	for i, v := range vals {
		out[len(vals)-1-i] = v
	}

	return out, nil
}

// Sort sorts the array in place using less as the comparator.
func (a *Array) Sort(less func(x, y any) bool) error {
	vals, err := a.ToSlice()
	if err != nil {
		return err
	}

	sort.SliceStable(vals, func(i, j int) bool { return less(vals[i], vals[j]) })

	return a.replaceAll(vals)
}

// ToSorted returns a new sorted plain slice without mutating the array.
func (a *Array) ToSorted(less func(x, y any) bool) ([]any, error) {
	vals, err := a.ToSlice()
	if err != nil {
		return nil, err
	}

	out := make([]any, len(vals))
	copy(out, vals)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })

	return out, nil
}

// Fill sets every slot in [start, end) to value.
func (a *Array) Fill(value any, start, end int) error {
	length := a.Length()
	start = clamp(start, 0, length)
	end = clamp(end, 0, length)

	for i := start; i < end; i++ {
		if err := a.Set(i, value); err != nil {
			return err
		}
	}

	return nil
}

// Includes reports whether value is deep-equal (via eq) to any present
// element.
func (a *Array) Includes(value any, eq func(x, y any) bool) (bool, error) {
	_, found, err := a.Find(func(_ int, v any) (bool, error) { return eq(v, value), nil })
	return found, err
}

// IndexOf returns the index of the first element equal to value per eq, or
// -1.
func (a *Array) IndexOf(value any, eq func(x, y any) bool) (int, error) {
	return a.FindIndex(func(_ int, v any) (bool, error) { return eq(v, value), nil })
}

// LastIndexOf returns the index of the last element equal to value per eq,
// or -1.
func (a *Array) LastIndexOf(value any, eq func(x, y any) bool) (int, error) {
	return a.FindLastIndex(func(_ int, v any) (bool, error) { return eq(v, value), nil })
}

// replaceAll overwrites the array's contents with vals, truncating or
// extending length to match.
func (a *Array) replaceAll(vals []any) error {
	for i, v := range vals {
		if err := a.Set(i, v); err != nil {
			return err
		}
	}

	for a.Length() > len(vals) {
		if err := a.Delete(a.Length() - 1); err != nil {
			return err
		}
	}

	return nil
}
