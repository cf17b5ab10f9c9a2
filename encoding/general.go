package encoding

import (
	"encoding/json"
	"fmt"

	"github.com/shmkv/shmkv/compress"
	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/format"
	"github.com/shmkv/shmkv/layout"
)

// GeneralEncoder serializes arbitrary composite values to a canonical
// text-based structural form, per spec §4.2. encoding/json is the canonical
// form here: Go's json.Marshal sorts map[string]T keys lexicographically,
// which is exactly the "stable structural stringification" the spec asks
// for, with no third-party canonicalization library in the example corpus
// to reach for instead (see DESIGN.md).
//
// The first byte of the value bytes records a format.CompressionType tag so
// a payload can optionally be compressed with one of the Codecs in package
// compress; MaxLen always over-approximates by assuming no compression, and
// Encode uses the compressed form whenever it fits in dst (with a dst of
// exactly MaxLen bytes, when it is no larger than the uncompressed form).
type GeneralEncoder struct {
	Compression format.CompressionType
}

func (GeneralEncoder) ID() uint16 { return layout.EncoderGeneral }

func (e GeneralEncoder) MaxLen(v any) (int, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	return 1 + len(raw), nil
}

func (e GeneralEncoder) Encode(v any, dst []byte) (int, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	if codec, ok := e.codec(); ok {
		if compressed, cerr := codec.Compress(raw); cerr == nil && len(compressed)+1 <= len(dst) {
			dst[0] = byte(e.Compression)
			n := copy(dst[1:], compressed)

			return 1 + n, nil
		}
	}

	if len(dst) < 1+len(raw) {
		return 0, fmt.Errorf("%w: general encoder needs %d bytes, got %d", errs.ErrEncoderFailure, 1+len(raw), len(dst))
	}

	dst[0] = byte(format.CompressionNone)
	n := copy(dst[1:], raw)

	return 1 + n, nil
}

func (e GeneralEncoder) Decode(src []byte) (any, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: general value has no compression tag byte", errs.ErrEncoderFailure)
	}

	tag := format.CompressionType(src[0])
	payload := src[1:]

	if tag != format.CompressionNone {
		codec, err := compress.GetCodec(tag)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
		}

		payload, err = codec.Decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
		}
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrEncoderFailure, err)
	}

	return v, nil
}

func (e GeneralEncoder) codec() (compress.Codec, bool) {
	if e.Compression == format.CompressionNone || e.Compression == 0 {
		return nil, false
	}

	codec, err := compress.GetCodec(e.Compression)
	if err != nil {
		return nil, false
	}

	return codec, true
}
