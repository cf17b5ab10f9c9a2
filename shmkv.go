// Package shmkv provides a concurrent, shared-memory-backed hash map and
// dense indexed array whose entire state lives in two raw byte regions — an
// index region and a data region — that can be handed from one execution
// context to another at zero copy cost.
//
// # Basic usage
//
// Creating and using a map:
//
//	m, err := shmkv.NewMap(shmkv.WithExpectedSize(1024))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	ctx := context.Background()
//	_ = m.Set(ctx, "cpu.usage", 42.5)
//	v, ok, _ := m.Get(ctx, "cpu.usage")
//
// Creating and using an array:
//
//	a, err := shmkv.NewArray(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	_ = a.Push("first")
//	_ = a.Push("second")
//	v, ok, _ := a.At(0)
//
// # Handoff between execution contexts
//
// Both containers support a transferable state envelope: a view constructed
// over the same two regions observes the same data, coordinated by the
// lock embedded in the map's index region (arrays require single-context
// ownership; see package array's doc comment).
//
//	state := m.ToTransferableState()
//	// ... hand state.Index/state.Data to another goroutine/process ...
//	m2, err := shmkv.MapFromTransferableState(state)
//
// # Package structure
//
// This package provides convenient top-level wrappers around the hashmap
// and array packages. For advanced usage — custom encoders, lock timeouts,
// or direct region management — use those packages directly.
package shmkv

import (
	"github.com/shmkv/shmkv/array"
	"github.com/shmkv/shmkv/format"
	"github.com/shmkv/shmkv/hashmap"
	"github.com/shmkv/shmkv/transfer"
)

// Map is a concurrent, shared-memory-backed hash map, per spec §3/§4.3.
type Map = hashmap.Map

// Array is a shared-memory-backed dense indexed array, per spec §3/§4.4.
type Array = array.Array

// TransferableState is the handoff envelope shared by Map and Array, per
// spec §4.6.
type TransferableState = transfer.State

// CompressionType selects the codec applied to general (non-numeric,
// non-string) values, per spec §4.2.
type CompressionType = format.CompressionType

// Compression codec identifiers, re-exported from package format.
const (
	CompressionNone = format.CompressionNone
	CompressionZstd = format.CompressionZstd
	CompressionS2   = format.CompressionS2
	CompressionLZ4  = format.CompressionLZ4
)

// MapOption configures a Map at construction time.
type MapOption = hashmap.Option

// ArrayOption configures an Array at construction time.
type ArrayOption = array.Option

// Map construction options, re-exported from package hashmap.
var (
	WithExpectedSize         = hashmap.WithExpectedSize
	WithAverageBytesPerValue = hashmap.WithAverageBytesPerValue
	WithSerializer           = hashmap.WithSerializer
	WithLockTimeout          = hashmap.WithLockTimeout
	WithSharedMemory         = hashmap.WithSharedMemory
	WithGeneralCompression   = hashmap.WithGeneralCompression
)

// Array construction options, re-exported from package array.
var (
	WithArraySerializer         = array.WithSerializer
	WithArraySharedMemory       = array.WithSharedMemory
	WithArrayGeneralCompression = array.WithGeneralCompression
)

// NewMap constructs an empty Map. Defaults: 1024 expected entries, 256
// average bytes per value, a 500ms lock timeout, and a preference for truly
// shared memory, per spec §6.
func NewMap(opts ...MapOption) (*Map, error) {
	return hashmap.New(opts...)
}

// MapFromTransferableState reconstructs a Map over regions handed off by
// another execution context, per spec §4.6.
func MapFromTransferableState(ts TransferableState, opts ...MapOption) (*Map, error) {
	return hashmap.FromTransferableState(ts, opts...)
}

// NewArray constructs an Array, optionally pre-populated with initial
// values in order, per spec §6.
func NewArray(initial []any, opts ...ArrayOption) (*Array, error) {
	return array.New(initial, opts...)
}

// ArrayFromTransferableState reconstructs an Array over regions handed off
// by another execution context, per spec §4.6.
func ArrayFromTransferableState(ts TransferableState, opts ...ArrayOption) (*Array, error) {
	return array.FromTransferableState(ts, opts...)
}
