package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtension is the frame type vzip collects by default.
const DefaultExtension = ".ppm"

// ListFrames returns the names of the files in dir whose names end in ext,
// sorted bytewise. Subdirectories are ignored. Any failure to read dir is
// reported as ErrSourceUnavailable.
func ListFrames(dir, ext string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, dir, ErrExpectedDirectory)
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	names := []string{}
	for _, d := range dirents {
		if d.IsDir() || !MatchesExtension(d.Name(), ext) {
			continue
		}
		names = append(names, d.Name())
	}
	// ReadDir already sorts by name; sort again so the ordering contract
	// does not rest on that.
	slices.Sort(names)
	return names, nil
}

// MatchesExtension reports whether name ends in ext. The comparison is case
// sensitive; a bare ext with no dot is accepted and treated as ".ext".
func MatchesExtension(name, ext string) bool {
	if ext == "" {
		return true
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.HasSuffix(name, ext)
}

// CountFrames counts the files under dir that match ext. With recursive set
// it walks the whole tree, otherwise only dir itself. If progress is non-nil
// it is called every 10,000 frames.
func CountFrames(dir, ext string, recursive bool, progress func(int)) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !MatchesExtension(d.Name(), ext) {
			return nil
		}
		count++
		if progress != nil && count%10000 == 0 {
			progress(count)
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return count, nil
}

// DefaultFrameName names the frame at ordinal when no manifest is available.
func DefaultFrameName(ordinal int, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("frame-%06d%s", ordinal, ext)
}
