// Package util provides the filesystem plumbing around the vzip pipeline.
//
// The pipeline itself only sees an ordered list of paths and an io.Writer.
// Everything on either side of it lives here:
//
// Frame Enumeration:
//   - ListFrames filters a directory by extension and sorts names bytewise
//   - CountFrames counts matching frames, optionally recursing
//   - ErrSourceUnavailable marks the one recoverable failure of a run
//
// Output Handling:
//   - AtomicFile writes the archive beside its destination and renames it
//     into place only after the run succeeds
//
// Sidecars:
//   - FrameTable records, per ordinal, the source name, sizes, truncation
//     and archive offset (<archive>.manifest.json)
//   - Metadata summarises a run with a UUID, version, codec settings, sizes,
//     the archive SHA-256 and a short colour-hash tag (<archive>.meta.json)
//
// Inodes:
//   - InodeAllocator hands out inode numbers for the FUSE view of an archive
package util
