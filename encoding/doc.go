// Package encoding implements the pluggable value-encoding layer described in
// spec §4.2: a closed set of built-in encoders (integer, float, UTF-8
// string, general-purpose) plus a user-supplied extension point, each
// self-identifying by an encoder_id tag recorded alongside the entry it
// encoded.
//
// The core never decodes directly out of a live region. Callers copy
// value_length bytes into a pooled scratch buffer (package
// github.com/shmkv/shmkv/internal/pool) first, then decode from the copy.
// This isolates decoders from concurrent mutation of the underlying memory
// while the decode is in progress.
package encoding
