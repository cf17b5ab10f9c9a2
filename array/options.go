package array

import (
	"fmt"

	"github.com/shmkv/shmkv/compress"
	"github.com/shmkv/shmkv/encoding"
	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/format"
	"github.com/shmkv/shmkv/internal/options"
)

type config struct {
	serializer         encoding.Encoder
	preferShared       bool
	generalCompression format.CompressionType
}

func defaultConfig() *config {
	return &config{preferShared: true, generalCompression: format.CompressionNone}
}

// Option configures an Array at construction time.
type Option = options.Option[*config]

// WithSerializer installs a user encoder (spec §4.2's UserEncoder, highest
// selection precedence) for this Array's values.
func WithSerializer(enc encoding.Encoder) Option {
	return options.NoError(func(c *config) {
		c.serializer = enc
	})
}

// WithSharedMemory controls whether construction prefers a truly shared
// region (mmap) over a process-local one. Defaults to true.
func WithSharedMemory(shared bool) Option {
	return options.NoError(func(c *config) {
		c.preferShared = shared
	})
}

// WithGeneralCompression selects the compress.Codec applied to values that
// fall back to GeneralEncoder (spec §4.2's general-value encoding), e.g.
// maps, slices, and structs. Defaults to format.CompressionNone.
func WithGeneralCompression(c format.CompressionType) Option {
	return options.New(func(cfg *config) error {
		if _, err := compress.GetCodec(c); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
		}

		cfg.generalCompression = c

		return nil
	})
}
