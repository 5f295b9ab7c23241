// Package main provides the vzip command-line interface.
//
// vzip packs a directory of same-format image frames (binary PPM by default)
// into one archive of independently compressed, length-prefixed records, in
// lexicographic filename order. Frames are compressed in parallel on a fixed
// pool of workers and written in order once every worker has finished, so the
// archive is byte-identical from run to run.
//
// Running vzip with a directory argument compresses it. The binary also
// supports subcommands:
//   - compress: build an archive from a directory of frames
//   - extract: decompress an archive back into frame files
//   - validate: check an archive for corruption and sidecar consistency
//   - mount: mount an archive as a read-only FUSE directory
//   - count: count frames in a directory
//   - seed: generate synthetic PPM frames
//
// Exit status is 0 on success, 2 when the source directory cannot be read
// and 1 for any other failure.
package main
