package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dendrascience/vzip/util"
	"github.com/dendrascience/vzip/vzip"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates and returns the extract subcommand for the vzip CLI.
// It writes every record of an archive back out as a file.
func NewExtractCmd() *cobra.Command {
	var (
		codecName string
		ext       string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "extract ARCHIVE DEST_DIR",
		Short: "Decompress an archive into a directory of frames",
		Long: `Decompress every record of ARCHIVE into DEST_DIR.

Files are named from the archive's manifest sidecar when it exists
(<archive>.manifest.json); otherwise records are written as
frame-NNNNNN<ext> in archive order. Frames that were truncated when the
archive was built are written truncated.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := vzip.LookupCodec(codecName)
			if err != nil {
				return err
			}
			n, err := runExtract(args[0], args[1], codec, ext, verbose, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d frames to %s\n", n, args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&codecName, "codec", "c", vzip.DefaultCodec, "Codec the archive was written with")
	cmd.Flags().StringVarP(&ext, "ext", "e", util.DefaultExtension, "Extension for frame names when no manifest exists")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runExtract(archivePath, destDir string, codec vzip.Codec, ext string, verbose bool, out io.Writer) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	index, err := vzip.ScanIndex(f)
	if err != nil {
		return 0, fmt.Errorf("index %s: %w", archivePath, err)
	}
	names, manifest := util.FrameNames(archivePath, len(index), ext)
	if verbose && manifest != nil {
		fmt.Fprintf(out, "Using names from %s\n", util.ManifestPath(archivePath))
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", destDir, err)
	}

	for i, entry := range index {
		payload, err := vzip.ReadPayload(f, entry)
		if err != nil {
			return i, err
		}
		data, err := codec.Decompress(payload)
		if err != nil {
			return i, fmt.Errorf("record %d: %w", entry.Ordinal, err)
		}
		// Manifest names are base names; never let one escape destDir.
		target := filepath.Join(destDir, filepath.Base(names[i]))
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return i, err
		}
		if verbose {
			fmt.Fprintf(out, "  %s (%d bytes)\n", target, len(data))
		}
	}
	return len(index), nil
}
