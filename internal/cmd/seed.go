package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the vzip CLI.
// It generates synthetic PPM frames for trying out compress.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		frameCount int
		width      int
		height     int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate synthetic PPM frames",
		Long: `Generate a sequence of binary PPM (P6) frames for testing vzip.

Each frame is a moving colour gradient, so consecutive frames differ but
compress well. The header carries a comment line with a random UUID, making
every generated frame unique across runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintf(out, "Generating %d %dx%d frames in %s\n", frameCount, width, height, outputPath)
			}
			if err := runSeed(outputPath, frameCount, width, height); err != nil {
				return err
			}
			if verbose {
				fmt.Fprintf(out, "Successfully created %d frames\n", frameCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&frameCount, "count", "n", 100, "Number of frames to generate")
	cmd.Flags().IntVar(&width, "width", 320, "Frame width in pixels")
	cmd.Flags().IntVar(&height, "height", 240, "Frame height in pixels")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

func runSeed(outputPath string, frameCount, width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("frame size must be positive, got %dx%d", width, height)
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for i := range frameCount {
		path := filepath.Join(outputPath, fmt.Sprintf("frame%05d.ppm", i))
		if err := writeSeedFrame(path, i, width, height); err != nil {
			return err
		}
	}
	return nil
}

func writeSeedFrame(path string, frame, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n# %s\n%d %d\n255\n", uuid.New().String(), width, height)
	pixel := make([]byte, 3)
	for y := range height {
		for x := range width {
			pixel[0] = byte(x + frame)
			pixel[1] = byte(y + 2*frame)
			pixel[2] = byte((x + y) / 2)
			if _, err := w.Write(pixel); err != nil {
				return err
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
