package vzip

import (
	"fmt"
	"log"
)

const (
	// DefaultWorkers is the size of the worker pool.
	DefaultWorkers = 20
	// DefaultBufferSize is the per-frame read capacity. Frames larger than
	// this are truncated to their first DefaultBufferSize bytes.
	DefaultBufferSize = 1 << 20
)

// Config holds the settings for a Pipeline.
type Config struct {
	Workers    int         // number of compression workers, fixed for the run
	BufferSize int         // bytes read from each frame at most
	Codec      string      // registered codec name
	Logger     *log.Logger // progress and debug output; nil discards
}

// DefaultConfig returns the settings the archive format was defined with.
func DefaultConfig() Config {
	return Config{
		Workers:    DefaultWorkers,
		BufferSize: DefaultBufferSize,
		Codec:      DefaultCodec,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBufferSize, c.BufferSize)
	}
	if _, err := LookupCodec(c.Codec); err != nil {
		return err
	}
	return nil
}
