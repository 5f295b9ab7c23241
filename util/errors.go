package util

import "errors"

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// File and directory errors
	ErrExpectedFile      = errors.New("expected file, got directory")
	ErrExpectedDirectory = errors.New("expected directory but got file")

	// ErrSourceUnavailable wraps any failure to open or list the source
	// directory. It is the only error a run recovers from.
	ErrSourceUnavailable = errors.New("source directory unavailable")

	// Frame table errors
	ErrIndexOutOfRange = errors.New("index out of range")
)
