// Package errs defines the sentinel errors surfaced by shmkv's public API.
//
// Callers should compare against these with errors.Is; call sites elsewhere in
// the module wrap them with fmt.Errorf("%w: ...", errs.ErrX, detail) to attach
// context without losing the sentinel identity.
package errs

import "errors"

var (
	// ErrCapacityExhausted is returned when a region cannot grow, neither as
	// a truly shared allocation nor as a process-local fallback.
	ErrCapacityExhausted = errors.New("shmkv: capacity exhausted")

	// ErrLockTimeout is returned when a read or write lock could not be
	// acquired within the configured timeout. The caller may retry.
	ErrLockTimeout = errors.New("shmkv: lock acquisition timed out")

	// ErrInvalidHandoff is returned by FromTransferableState when the
	// envelope's Kind does not match the container being reconstructed.
	ErrInvalidHandoff = errors.New("shmkv: transferable state kind mismatch")

	// ErrInvalidConfig is returned at construction time for malformed options.
	ErrInvalidConfig = errors.New("shmkv: invalid configuration")

	// ErrEmptyReduce is returned by Reduce/ReduceRight when called on an
	// empty Array without an initial accumulator value.
	ErrEmptyReduce = errors.New("shmkv: reduce of empty array with no initial value")

	// ErrKeyNotFound reports a missing key. No operation in this module
	// returns it: Get, Has and Delete report absence through a boolean.
	ErrKeyNotFound = errors.New("shmkv: key not found")

	// ErrIndexOutOfRange is returned when an array index is negative or
	// beyond the current length for operations that require an existing slot.
	ErrIndexOutOfRange = errors.New("shmkv: index out of range")

	// ErrCorruptRegion is returned when a decoded length or offset field is
	// structurally impossible to satisfy without reading out of bounds. It is
	// treated as a fatal programmer/data bug, not something to repair.
	ErrCorruptRegion = errors.New("shmkv: corrupt region layout")

	// ErrEncoderFailure wraps an error surfaced from a value encoder/decoder.
	ErrEncoderFailure = errors.New("shmkv: encoder failure")

	// ErrClosed is returned when an operation is attempted on a container
	// whose regions have already been released.
	ErrClosed = errors.New("shmkv: container closed")
)
