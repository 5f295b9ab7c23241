package cmd

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/dendrascience/vzip/util"
	"github.com/dendrascience/vzip/vzip"
	"github.com/spf13/cobra"
)

// DefaultOutput is the archive name written in the working directory.
const DefaultOutput = "video.vzip"

type compressOptions struct {
	output     string
	workers    int
	bufferSize int
	ext        string
	codec      string
	metadata   bool
	manifest   bool
	verbose    bool
}

func defaultCompressOptions() *compressOptions {
	cfg := vzip.DefaultConfig()
	return &compressOptions{
		output:     DefaultOutput,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		ext:        util.DefaultExtension,
		codec:      cfg.Codec,
	}
}

func (o *compressOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", o.output, "Path of the archive to write (replaced if it exists)")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", o.workers, "Number of compression workers")
	cmd.Flags().IntVar(&o.bufferSize, "buffer-size", o.bufferSize, "Bytes read from each frame; larger frames are truncated")
	cmd.Flags().StringVarP(&o.ext, "ext", "e", o.ext, "Only archive files with this extension")
	cmd.Flags().StringVarP(&o.codec, "codec", "c", o.codec, "Compression codec ("+strings.Join(vzip.CodecNames(), ", ")+")")
	cmd.Flags().BoolVar(&o.metadata, "metadata", o.metadata, "Write run metadata next to the archive (<output>.meta.json)")
	cmd.Flags().BoolVar(&o.manifest, "manifest", o.manifest, "Write the frame manifest next to the archive (<output>.manifest.json)")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", o.verbose, "Enable verbose output")
}

// NewCompressCmd creates and returns the compress subcommand for the vzip CLI.
// It packs every matching frame of a directory into one archive.
func NewCompressCmd() *cobra.Command {
	opts := defaultCompressOptions()

	cmd := &cobra.Command{
		Use:   "compress DIR",
		Short: "Compress a directory of frames into an archive",
		Long: `Compress every frame in DIR whose name ends in the selected extension into a
single archive, in lexicographic filename order.

Each frame is read into a fixed-size buffer (frames larger than --buffer-size
are truncated), compressed independently at the codec's highest level and
written as a length-prefixed record. The archive only appears at --output once
every frame has been compressed and written.

Exit status is 2 if DIR cannot be read and 1 for any other failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runCompress(cmd, args[0], opts)
			return err
		},
	}
	opts.bind(cmd)

	return cmd
}

func runCompress(cmd *cobra.Command, dir string, opts *compressOptions) (vzip.Stats, error) {
	start := time.Now()
	out := cmd.OutOrStdout()

	cfg := vzip.Config{
		Workers:    opts.workers,
		BufferSize: opts.bufferSize,
		Codec:      opts.codec,
	}
	if opts.verbose {
		cfg.Logger = log.New(cmd.ErrOrStderr(), "vzip: ", log.Ltime|log.Lmicroseconds)
	}
	pipeline, err := vzip.NewPipeline(cfg)
	if err != nil {
		return vzip.Stats{}, err
	}

	names, err := util.ListFrames(dir, opts.ext)
	if err != nil {
		return vzip.Stats{}, err
	}
	if opts.verbose {
		fmt.Fprintf(out, "Found %d %s frames in %s\n", len(names), opts.ext, dir)
	}

	archive, err := util.CreateAtomic(opts.output)
	if err != nil {
		return vzip.Stats{}, fmt.Errorf("create archive: %w", err)
	}
	defer archive.Abort()

	stats, err := pipeline.Run(cmd.Context(), vzip.NewSourceIndex(dir, names), archive)
	if err != nil {
		return vzip.Stats{}, err
	}
	if err := archive.Commit(); err != nil {
		return vzip.Stats{}, err
	}

	if err := writeSidecars(out, dir, stats, opts); err != nil {
		return stats, err
	}

	if opts.verbose {
		fmt.Fprintf(out, "Archive: %s\n", opts.output)
		fmt.Fprintf(out, "  Frames: %d (%d truncated to %d bytes)\n", stats.Files, stats.Truncated, stats.BufferSize)
		fmt.Fprintf(out, "  Raw size: %d bytes\n", stats.RawBytes)
		fmt.Fprintf(out, "  Compressed size: %d bytes (%d with prefixes)\n", stats.CompressedBytes, stats.ArchiveBytes)
		fmt.Fprintf(out, "  Codec: %s, workers: %d\n", stats.Codec, stats.Workers)
	}
	printReport(out, stats, time.Since(start))
	return stats, nil
}

// writeSidecars writes the requested sidecars and removes any left over from
// an earlier archive at the same path, since they no longer describe it.
func writeSidecars(out io.Writer, dir string, stats vzip.Stats, opts *compressOptions) error {
	if !opts.manifest {
		if err := util.RemoveSidecar(util.ManifestPath(opts.output)); err != nil {
			return err
		}
	}
	if !opts.metadata {
		if err := util.RemoveSidecar(util.MetadataPath(opts.output)); err != nil {
			return err
		}
	}
	if opts.manifest {
		path := util.ManifestPath(opts.output)
		if err := util.NewFrameTable(stats.Frames).Save(path); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		if opts.verbose {
			fmt.Fprintf(out, "Wrote manifest %s\n", path)
		}
	}
	if opts.metadata {
		metadata, err := util.GenerateMetadata(stats, dir, opts.output)
		if err != nil {
			return fmt.Errorf("generate metadata: %w", err)
		}
		path := util.MetadataPath(opts.output)
		if err := metadata.Save(path); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
		if opts.verbose {
			fmt.Fprintf(out, "Wrote metadata %s (run %s, tag %s)\n", path, metadata.RunID, metadata.ArchiveTag)
		}
	}
	return nil
}

func printReport(out io.Writer, stats vzip.Stats, elapsed time.Duration) {
	fmt.Fprintf(out, "Compression rate: %.2f%%\n", stats.CompressionRate())
	fmt.Fprintf(out, "Time: %.2f seconds\n", elapsed.Seconds())
}
