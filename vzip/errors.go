package vzip

import "errors"

// Sentinel errors for package vzip.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Configuration errors
	ErrInvalidWorkers    = errors.New("worker count must be at least 1")
	ErrInvalidBufferSize = errors.New("buffer size must be at least 1 byte")
	ErrUnknownCodec      = errors.New("unknown codec")

	// Pipeline errors
	ErrMissingRecord = errors.New("result slot is empty after barrier")

	// Archive errors
	ErrRecordTooLarge = errors.New("record payload exceeds int32 length prefix")
	ErrCorruptArchive = errors.New("archive is truncated or corrupt")
	ErrNegativeLength = errors.New("record length prefix is negative")
)
