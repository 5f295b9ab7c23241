package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dendrascience/vzip/util"
	"github.com/dendrascience/vzip/vzip"
	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned when an archive has at least one problem.
var ErrValidationFailed = errors.New("archive validation failed")

// NewValidateCmd creates and returns the validate subcommand for the vzip CLI.
// It provides archive validation and sidecar consistency checking.
func NewValidateCmd() *cobra.Command {
	var (
		codecName string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "validate ARCHIVE",
		Short: "Validate a vzip archive for corruption and consistency",
		Long: `Validate a vzip archive for corruption and consistency issues.

Every record is read and decompressed. When the manifest sidecar exists the
record count, offsets, compressed lengths and decompressed lengths are checked
against it; when the metadata sidecar exists the archive hash and frame count
are checked against it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := vzip.LookupCodec(codecName)
			if err != nil {
				return err
			}
			return runValidate(args[0], codec, verbose, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&codecName, "codec", "c", vzip.DefaultCodec, "Codec the archive was written with")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runValidate(archivePath string, codec vzip.Codec, verbose bool, out io.Writer) error {
	if verbose {
		fmt.Fprintf(out, "Validating vzip archive %s\n", archivePath)
	}

	records, problems := validateArchive(archivePath, codec, verbose, out)

	if len(problems) > 0 {
		fmt.Fprintf(out, "Archive %s has %d errors:\n", archivePath, len(problems))
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	} else if verbose {
		fmt.Fprintf(out, "Archive %s is valid\n", archivePath)
	}

	fmt.Fprintf(out, "\nValidation complete:\n")
	fmt.Fprintf(out, "  Records checked: %d\n", records)
	fmt.Fprintf(out, "  Total errors: %d\n", len(problems))

	if len(problems) > 0 {
		return fmt.Errorf("%s: %w (%d errors)", archivePath, ErrValidationFailed, len(problems))
	}
	return nil
}

func validateArchive(archivePath string, codec vzip.Codec, verbose bool, out io.Writer) (int, []string) {
	var problems []string

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, []string{fmt.Sprintf("Failed to open archive: %v", err)}
	}
	defer f.Close()

	index, err := vzip.ScanIndex(f)
	if err != nil {
		return 0, []string{fmt.Sprintf("Failed to index archive: %v", err)}
	}

	decoded := make([]int, len(index))
	for i, entry := range index {
		payload, err := vzip.ReadPayload(f, entry)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Record %d: read failed: %v", entry.Ordinal, err))
			decoded[i] = -1
			continue
		}
		data, err := codec.Decompress(payload)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Record %d: %s decompression failed: %v", entry.Ordinal, codec.Name(), err))
			decoded[i] = -1
			continue
		}
		decoded[i] = len(data)
	}

	manifestPath := util.ManifestPath(archivePath)
	if table, err := util.LoadFrameTable(manifestPath); err == nil {
		if verbose {
			fmt.Fprintf(out, "Checking manifest %s\n", manifestPath)
			fmt.Fprintf(out, "  Frames: %d (%d truncated)\n", table.Len(), table.GetTruncatedCount())
			fmt.Fprintf(out, "  Source size: %d bytes, compressed from %d bytes to %d bytes\n",
				table.GetSourceSize(), table.GetRawSize(), table.GetCompressedSize())
		}
		problems = append(problems, table.CheckIndex(index)...)
		for i := 0; i < min(table.Len(), len(decoded)); i++ {
			fe, _ := table.Get(i)
			if decoded[i] >= 0 && decoded[i] != fe.ReadBytes {
				problems = append(problems, fmt.Sprintf("Record %d (%s): decompresses to %d bytes, manifest says %d",
					fe.Ordinal, fe.Name, decoded[i], fe.ReadBytes))
			}
		}
	} else if !os.IsNotExist(err) {
		problems = append(problems, fmt.Sprintf("Failed to read manifest: %v", err))
	}

	metadataPath := util.MetadataPath(archivePath)
	if metadata, err := util.LoadMetadata(metadataPath); err == nil {
		if verbose {
			fmt.Fprintf(out, "Checking metadata %s\n", metadataPath)
		}
		if metadata.FrameCount != len(index) {
			problems = append(problems, fmt.Sprintf("Metadata frame count mismatch: expected %d, got %d",
				metadata.FrameCount, len(index)))
		}
		if metadata.Codec != "" && metadata.Codec != codec.Name() {
			problems = append(problems, fmt.Sprintf("Archive was written with codec %s, validating with %s",
				metadata.Codec, codec.Name()))
		}
		if metadata.ArchiveDigest != "" {
			ok, err := util.VerifyFileDigest(archivePath, metadata.ArchiveDigest)
			if err != nil {
				problems = append(problems, fmt.Sprintf("Failed to verify archive digest: %v", err))
			} else if !ok {
				problems = append(problems, fmt.Sprintf("Archive hash mismatch: metadata digest %s", metadata.ArchiveDigest))
			}
		} else if metadata.ArchiveSHA256 != "" {
			hash, err := util.GetFileHash(archivePath)
			if err != nil {
				problems = append(problems, fmt.Sprintf("Failed to hash archive: %v", err))
			} else if hash != metadata.ArchiveSHA256 {
				problems = append(problems, fmt.Sprintf("Archive hash mismatch: metadata %s, actual %s",
					util.ArchiveTag(metadata.ArchiveSHA256), util.ArchiveTag(hash)))
			}
		}
	} else if !os.IsNotExist(err) {
		problems = append(problems, fmt.Sprintf("Failed to read metadata: %v", err))
	}

	return len(index), problems
}
