package encoding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/layout"
)

// Internal numeric sub-tags, written as the first byte of the value bytes
// themselves (distinct from the entry header's value_encoder_id, which is
// layout.EncoderInt for every numeric value regardless of subkind), per spec
// §4.2: "Integer: tag byte 0 ... Float: tag byte 1".
const (
	numericTagInt   = 0
	numericTagFloat = 1
)

// IntEncoderSize is the encoded size of an integer value: tag byte + signed
// 32-bit big-endian integer.
const IntEncoderSize = 5

// FloatEncoderSize is the encoded size of a float value: tag byte + 64-bit
// IEEE-754 big-endian float.
const FloatEncoderSize = 9

// NumericEncoder encodes both integer and floating-point values under a
// single entry header tag (layout.EncoderInt); a self-describing sub-tag
// byte at the start of the value bytes distinguishes the two at decode time,
// per spec §4.2.
type NumericEncoder struct{}

func (NumericEncoder) ID() uint16 { return layout.EncoderInt }

func (NumericEncoder) MaxLen(v any) (int, error) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		if _, _, err := tryInt32(v); err != nil {
			return 0, err
		}

		return IntEncoderSize, nil
	case float32, float64:
		return FloatEncoderSize, nil
	default:
		return 0, fmt.Errorf("%w: %T is not a numeric value", errs.ErrEncoderFailure, v)
	}
}

func (NumericEncoder) Encode(v any, dst []byte) (int, error) {
	if n, ok, err := tryInt32(v); err != nil {
		return 0, err
	} else if ok {
		if len(dst) < IntEncoderSize {
			return 0, fmt.Errorf("%w: int encoder needs %d bytes, got %d", errs.ErrEncoderFailure, IntEncoderSize, len(dst))
		}

		dst[0] = numericTagInt
		binary.BigEndian.PutUint32(dst[1:5], uint32(n))

		return IntEncoderSize, nil
	}

	f, ok := toFloat64(v)
	if !ok {
		return 0, fmt.Errorf("%w: %T is not a numeric value", errs.ErrEncoderFailure, v)
	}

	if len(dst) < FloatEncoderSize {
		return 0, fmt.Errorf("%w: float encoder needs %d bytes, got %d", errs.ErrEncoderFailure, FloatEncoderSize, len(dst))
	}

	dst[0] = numericTagFloat
	binary.BigEndian.PutUint64(dst[1:9], math.Float64bits(f))

	return FloatEncoderSize, nil
}

func (NumericEncoder) Decode(src []byte) (any, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: numeric value has no sub-tag byte", errs.ErrEncoderFailure)
	}

	switch src[0] {
	case numericTagInt:
		if len(src) != IntEncoderSize {
			return nil, fmt.Errorf("%w: int value must be %d bytes, got %d", errs.ErrEncoderFailure, IntEncoderSize, len(src))
		}

		return int(int32(binary.BigEndian.Uint32(src[1:5]))), nil
	case numericTagFloat:
		if len(src) != FloatEncoderSize {
			return nil, fmt.Errorf("%w: float value must be %d bytes, got %d", errs.ErrEncoderFailure, FloatEncoderSize, len(src))
		}

		return math.Float64frombits(binary.BigEndian.Uint64(src[1:9])), nil
	default:
		return nil, fmt.Errorf("%w: unknown numeric sub-tag %d", errs.ErrEncoderFailure, src[0])
	}
}

func tryInt32(v any) (int32, bool, error) {
	var n int64

	switch t := v.(type) {
	case int:
		n = int64(t)
	case int8:
		n = int64(t)
	case int16:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		n = int64(t)
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, false, fmt.Errorf("%w: uint64 value %d overflows int32 range", errs.ErrEncoderFailure, t)
		}
		n = int64(t)
	default:
		return 0, false, nil
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false, fmt.Errorf("%w: value %d overflows signed 32-bit range", errs.ErrEncoderFailure, n)
	}

	return int32(n), true, nil
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
