package vzip

import "path/filepath"

// SourceFile is one input frame and its position in the archive.
type SourceFile struct {
	Ordinal int
	Path    string
}

// SourceIndex is the ordered, read-only list of frames for a run.
// It is built once before the parallel phase and never modified afterwards.
type SourceIndex struct {
	files []SourceFile
}

// NewSourceIndex builds an index from names that are already filtered and
// sorted. Each name is joined to dir; ordinals follow the slice order.
func NewSourceIndex(dir string, names []string) SourceIndex {
	files := make([]SourceFile, len(names))
	for i, name := range names {
		files[i] = SourceFile{Ordinal: i, Path: filepath.Join(dir, name)}
	}
	return SourceIndex{files: files}
}

// Len returns the number of frames in the index.
func (s SourceIndex) Len() int {
	return len(s.files)
}

// At returns the frame at ordinal i. It panics if i is out of range, since
// ordinals only ever come from a Dispatcher sized to this index.
func (s SourceIndex) At(i int) SourceFile {
	return s.files[i]
}

// Iterate yields every frame in ordinal order.
func (s SourceIndex) Iterate(yield func(SourceFile) bool) {
	for _, f := range s.files {
		if !yield(f) {
			return
		}
	}
}
