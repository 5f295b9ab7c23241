// Package vzip implements the concurrent frame compression pipeline behind the
// vzip archive format.
//
// An archive is a plain concatenation of records, one per source frame, in
// lexicographic filename order:
//
//	[int32 N, native endian][N bytes of compressed payload]
//
// There is no header or footer. Each payload is a complete compressed stream
// (zlib by default) of the first min(size, BufferSize) bytes of its frame.
//
// A run moves through fixed phases:
//
//	Enumerating -> Compressing -> Barrier -> Writing -> Done
//
// During Compressing a fixed pool of workers claims ordinals from a shared
// Dispatcher, compresses the corresponding file with a private reusable
// encoder and moves the result into its slot in a ResultStore. Once every
// worker has returned, the ArchiveWriter drains the store in ordinal order, so
// the archive bytes never depend on which worker finished first.
//
// Any read, compression or write failure aborts the run. Reader and ScanIndex
// decode archives for extraction, validation and the FUSE view.
package vzip
