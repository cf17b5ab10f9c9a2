package encoding

import (
	"fmt"

	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/format"
	"github.com/shmkv/shmkv/layout"
)

// Encoder converts a typed value to and from bytes, and reports an upper
// bound on the encoded size before encoding, per spec §4.2.
type Encoder interface {
	// ID is the encoder_id tag recorded in the entry header that selected
	// this encoder.
	ID() uint16

	// MaxLen returns an upper bound, in bytes, on Encode's output for v. It
	// must never under-approximate.
	MaxLen(v any) (int, error)

	// Encode writes v's encoded bytes into dst (which has at least
	// MaxLen(v) bytes of capacity) and returns the number of bytes written.
	Encode(v any, dst []byte) (int, error)

	// Decode reconstructs a value from previously encoded bytes.
	Decode(src []byte) (any, error)
}

// Builtins holds the built-in encoders, indexed by encoder_id, plus an
// optional user encoder taking precedence over all of them.
type Builtins struct {
	Numeric Encoder // handles both int and float values, see NumericEncoder
	String  Encoder
	General Encoder
	User    Encoder // nil unless configured
}

// NewBuiltins constructs the standard encoder set. generalCompression
// selects the compress.Codec GeneralEncoder applies to composite values,
// per spec §4.2's general-value encoding; format.CompressionNone (or the
// zero value, which is not CompressionNone) disables compression.
func NewBuiltins(generalCompression format.CompressionType) *Builtins {
	return &Builtins{
		Numeric: NumericEncoder{},
		String:  StringEncoder{},
		General: GeneralEncoder{Compression: generalCompression},
	}
}

// Select chooses the encoder for v at set-time, per spec §4.2: a configured
// user encoder always wins; otherwise selection follows v's runtime type.
func (b *Builtins) Select(v any) Encoder {
	if b.User != nil {
		return b.User
	}

	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return b.Numeric
	case string:
		return b.String
	default:
		return b.General
	}
}

// ByID looks up the encoder for a stored encoder_id, per spec §4.2
// ("decoder at read-time is chosen from the stored encoder_id").
func (b *Builtins) ByID(id uint16) (Encoder, error) {
	switch id {
	case layout.EncoderInt:
		return b.Numeric, nil
	case layout.EncoderString:
		return b.String, nil
	case layout.EncoderGeneral:
		return b.General, nil
	case layout.EncoderUser:
		if b.User == nil {
			return nil, fmt.Errorf("%w: entry tagged with user encoder id but none is configured", errs.ErrEncoderFailure)
		}

		return b.User, nil
	default:
		return nil, fmt.Errorf("%w: unknown encoder id %d", errs.ErrEncoderFailure, id)
	}
}
