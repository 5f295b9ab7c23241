// Package cmd provides the command-line interface implementation for vzip.
//
// It uses the Cobra library for command structure and Fang for styling.
// Each command lives in its own file with a constructor returning a
// *cobra.Command:
//   - compress: build an archive from a directory of frames (also the root
//     command's default action)
//   - extract: decompress every record of an archive into a directory
//   - validate: decode an archive and check it against its sidecars
//   - mount: expose an archive as a read-only FUSE directory
//   - count: count matching frames in a directory
//   - seed: generate synthetic PPM frames
//
// Commands return errors instead of exiting so that ExitCode can tell an
// unreadable source directory apart from a failed run.
package cmd
