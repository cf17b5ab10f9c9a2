package encoding

import "github.com/shmkv/shmkv/layout"

// UserEncodeFunc and UserDecodeFunc let a caller supply their own
// encode/decode pair for a domain value type. When configured, the user
// encoder takes precedence over every built-in, per spec §4.2.
type (
	UserMaxLenFunc func(v any) (int, error)
	UserEncodeFunc func(v any, dst []byte) (int, error)
	UserDecodeFunc func(src []byte) (any, error)
)

// UserEncoder adapts a caller-supplied encode/decode pair to the Encoder
// interface, tagged with encoder_id 3 per spec §3.3/§4.2.
type UserEncoder struct {
	MaxLenFunc UserMaxLenFunc
	EncodeFunc UserEncodeFunc
	DecodeFunc UserDecodeFunc
}

func (UserEncoder) ID() uint16 { return layout.EncoderUser }

func (e UserEncoder) MaxLen(v any) (int, error) { return e.MaxLenFunc(v) }

func (e UserEncoder) Encode(v any, dst []byte) (int, error) { return e.EncodeFunc(v, dst) }

func (e UserEncoder) Decode(src []byte) (any, error) { return e.DecodeFunc(src) }
