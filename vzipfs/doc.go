// Package vzipfs exposes a vzip archive as a read-only FUSE directory.
//
// Every record appears as one regular file in a flat root directory. Names
// come from the archive's manifest sidecar when present, otherwise records
// are named frame-NNNNNN<ext>. File contents are decompressed on first read
// and cached per file.
//
// The archive is indexed once at Open by walking its length prefixes; payloads
// are read on demand with ReadAt, so mounting a large archive is cheap.
package vzipfs
