package hashmap

import (
	"fmt"
	"time"

	"github.com/shmkv/shmkv/compress"
	"github.com/shmkv/shmkv/encoding"
	"github.com/shmkv/shmkv/errs"
	"github.com/shmkv/shmkv/format"
	"github.com/shmkv/shmkv/internal/options"
	"github.com/shmkv/shmkv/layout"
	"github.com/shmkv/shmkv/rwlock"
)

type config struct {
	expectedSize         int
	averageBytesPerValue int
	serializer           encoding.Encoder
	lockTimeout          time.Duration
	preferShared         bool
	generalCompression   format.CompressionType
}

func defaultConfig() *config {
	return &config{
		expectedSize:         layout.DefaultExpectedSize,
		averageBytesPerValue: layout.DefaultAverageBytesPerValue,
		lockTimeout:          rwlock.DefaultTimeout,
		preferShared:         true,
		generalCompression:   format.CompressionNone,
	}
}

// Option configures a Map at construction time.
type Option = options.Option[*config]

// WithExpectedSize sizes the initial bucket table for n entries, per spec §6.
func WithExpectedSize(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: expected size must be positive, got %d", errs.ErrInvalidConfig, n)
		}

		c.expectedSize = n

		return nil
	})
}

// WithAverageBytesPerValue sizes the initial data region, per spec §6. It
// must be a positive multiple of 4.
func WithAverageBytesPerValue(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 || n%4 != 0 {
			return fmt.Errorf("%w: average bytes per value must be a positive multiple of 4, got %d", errs.ErrInvalidConfig, n)
		}

		c.averageBytesPerValue = n

		return nil
	})
}

// WithSerializer installs a user encoder (spec §4.2's UserEncoder, highest
// selection precedence): enc is used for every value this Map stores.
func WithSerializer(enc encoding.Encoder) Option {
	return options.NoError(func(c *config) {
		c.serializer = enc
	})
}

// WithLockTimeout overrides the default 500ms lock acquisition timeout from
// spec §5.
func WithLockTimeout(d time.Duration) Option {
	return options.New(func(c *config) error {
		if d <= 0 {
			return fmt.Errorf("%w: lock timeout must be positive", errs.ErrInvalidConfig)
		}

		c.lockTimeout = d

		return nil
	})
}

// WithSharedMemory controls whether construction prefers a truly shared
// region (mmap) over a process-local one. Defaults to true; set false to
// force process-local (degraded lock mode, spec §5) regardless of platform
// support.
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

func bucketCountForExpectedSize(expectedSize int) int {
	min := int(float64(expectedSize)/layout.LoadFactor) + 1

	bc := 8
	for bc < min {
		bc *= 2
	}

	return bc
}
