package cmd

import (
	"errors"

	"github.com/dendrascience/vzip/util"
	"github.com/dendrascience/vzip/version"
	"github.com/spf13/cobra"
)

// Exit codes returned by ExitCode.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitSourceUnavailable = 2
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, util.ErrSourceUnavailable):
		return ExitSourceUnavailable
	default:
		return ExitFailure
	}
}

// NewRootCmd creates and returns the root cobra command for the vzip CLI.
// Given a directory it behaves like "vzip compress DIR".
func NewRootCmd() *cobra.Command {
	opts := defaultCompressOptions()

	rootCmd := &cobra.Command{
		Use:   "vzip [DIR]",
		Short: "vzip - pack a directory of image frames into one compressed archive",
		Long: `vzip packs a directory of same-format image frames into a single archive of
independently compressed records, in lexicographic filename order.

Compression runs on a fixed pool of workers; the archive bytes do not depend
on how the work was scheduled.

Use subcommands to perform different operations:
  - compress: Build an archive from a directory of frames
  - extract: Decompress an archive back into frame files
  - validate: Check an archive for corruption and sidecar consistency
  - mount: Mount an archive as a read-only FUSE directory
  - count: Count frames in a directory
  - seed: Generate synthetic PPM frames`,
		Version:       version.GetFullVersion(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			_, err := runCompress(cmd, args[0], opts)
			return err
		},
	}
	opts.bind(rootCmd)

	groupArchive := "archive"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupArchive,
		Title: "Archive Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	compressCmd := NewCompressCmd()
	extractCmd := NewExtractCmd()
	validateCmd := NewValidateCmd()
	mountCmd := NewMountCmd()
	countCmd := NewCountCmd()
	seedCmd := NewSeedCmd()

	compressCmd.GroupID = groupArchive
	extractCmd.GroupID = groupArchive
	validateCmd.GroupID = groupArchive
	mountCmd.GroupID = groupArchive
	countCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(seedCmd)

	return rootCmd
}
