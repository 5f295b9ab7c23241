package cmd

import (
	"fmt"

	"github.com/dendrascience/vzip/util"
	"github.com/spf13/cobra"
)

// NewCountCmd creates and returns the count subcommand for the vzip CLI.
// It reports how many frames compress would pick up.
func NewCountCmd() *cobra.Command {
	var (
		path         string
		ext          string
		recursive    bool
		showProgress bool
	)

	cmd := &cobra.Command{
		Use:   "count [PATH]",
		Short: "Count frames in a directory",
		Long: `Count the files in a directory whose names end in the selected extension.

Without --recursive only the directory itself is counted, which is exactly
the set of frames compress would archive.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				path = args[0]
			}
			out := cmd.OutOrStdout()
			var progress func(int)
			if showProgress {
				progress = func(n int) {
					fmt.Fprintf(out, "Progress: %d frames counted\n", n)
				}
			}
			count, err := util.CountFrames(path, ext, recursive, progress)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Total frames: %d\n", count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "./", "Path to count frames in")
	cmd.Flags().StringVarP(&ext, "ext", "e", util.DefaultExtension, "Frame extension to count")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show progress every 10,000 frames")

	return cmd
}
