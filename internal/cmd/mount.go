package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/vzip/util"
	"github.com/dendrascience/vzip/version"
	"github.com/dendrascience/vzip/vzip"
	"github.com/dendrascience/vzip/vzipfs"
	"github.com/spf13/cobra"
)

// NewMountCmd creates and returns the mount subcommand for the vzip CLI.
// It serves an archive as a read-only FUSE directory until interrupted.
func NewMountCmd() *cobra.Command {
	var (
		codecName string
		ext       string
	)

	cmd := &cobra.Command{
		Use:   "mount ARCHIVE MOUNTPOINT",
		Short: "Mount an archive as a read-only directory",
		Long: `Mount a vzip archive at the specified mountpoint.

Every record appears as one read-only file, decompressed on first read.
Names come from the manifest sidecar when present. The mountpoint must not
contain the archive. Press Ctrl-C to unmount.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := vzip.LookupCodec(codecName)
			if err != nil {
				return err
			}
			return runMount(args[0], args[1], codec, ext)
		},
	}

	cmd.Flags().StringVarP(&codecName, "codec", "c", vzip.DefaultCodec, "Codec the archive was written with")
	cmd.Flags().StringVarP(&ext, "ext", "e", util.DefaultExtension, "Extension for frame names when no manifest exists")

	return cmd
}

func runMount(archivePath, mountpoint string, codec vzip.Codec, ext string) error {
	fmt.Printf("vzip %s starting...\n", version.GetFullVersion())

	if isWithin(archivePath, mountpoint) {
		return fmt.Errorf("mountpoint %s would hide archive %s", mountpoint, archivePath)
	}

	filesystem, err := vzipfs.Open(archivePath, codec, ext)
	if err != nil {
		return err
	}
	defer filesystem.Close()

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("vzip"),
		fuse.Subtype("vzip"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, unmounting...")
		if err := fuse.Unmount(mountpoint); err != nil {
			log.Printf("Warning: unmount %s: %v", mountpoint, err)
		}
	}()

	log.Printf("vzip %s mounted %s at %s (%d frames)", version.GetVersion(), archivePath, mountpoint, filesystem.Len())
	if err := fs.Serve(c, filesystem); err != nil {
		return err
	}
	log.Println("Shutdown complete")
	return nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	p, err1 := filepath.Abs(path)
	d, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		p, d = filepath.Clean(path), filepath.Clean(dir)
	}
	if p == d {
		return true
	}
	rel, err := filepath.Rel(d, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
