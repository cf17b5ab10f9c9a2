package encoding

import (
	"fmt"
	"unicode/utf8"

	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/layout"
)

// StringMaxLenFactor is the worst-case UTF-8 byte expansion per character
// used to size the scratch buffer ahead of encoding, per spec §4.2
// ("max_len = 3 · char_count").
const StringMaxLenFactor = 3

// StringEncoder encodes UTF-8 strings verbatim: no tag byte, value bytes are
// exactly the string's UTF-8 representation, per spec §4.2.
type StringEncoder struct{}

func (StringEncoder) ID() uint16 { return layout.EncoderString }

func (StringEncoder) MaxLen(v any) (int, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %T is not a string value", errs.ErrEncoderFailure, v)
	}

	// A 4-byte rune exceeds the per-character factor, so the bound never
	// drops below the string's actual byte length.
	return max(StringMaxLenFactor*utf8.RuneCountInString(s), len(s)), nil
}

func (StringEncoder) Encode(v any, dst []byte) (int, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %T is not a string value", errs.ErrEncoderFailure, v)
	}

	if len(dst) < len(s) {
		return 0, fmt.Errorf("%w: string encoder needs %d bytes, got %d", errs.ErrEncoderFailure, len(s), len(dst))
	}

	return copy(dst, s), nil
}

func (StringEncoder) Decode(src []byte) (any, error) {
	return string(src), nil
}
