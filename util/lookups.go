package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dendrascience/vzip/vzip"
)

type (
	FrameEntry struct {
		Ordinal         int    `json:"ordinal"`          // position in the archive
		Name            string `json:"name"`             // source file name
		SourceSize      int64  `json:"source_size"`      // size on disk when read
		ReadBytes       int    `json:"read_bytes"`       // bytes compressed
		CompressedBytes int    `json:"compressed_bytes"` // payload length
		Offset          int64  `json:"offset"`           // archive offset of the length prefix
	}
	FrameTable struct {
		entries []FrameEntry
		sorted  bool
	}
)

// Truncated reports whether only part of the source made it into the archive.
func (e FrameEntry) Truncated() bool {
	return e.SourceSize > int64(e.ReadBytes)
}

// NewFrameTable builds a table from the frames of a completed run.
func NewFrameTable(frames []vzip.Frame) FrameTable {
	ft := FrameTable{entries: make([]FrameEntry, 0, len(frames))}
	for _, f := range frames {
		ft.Add(FrameEntry{
			Ordinal:         f.Ordinal,
			Name:            filepath.Base(f.Path),
			SourceSize:      f.SourceSize,
			ReadBytes:       f.ReadBytes,
			CompressedBytes: f.CompressedBytes,
			Offset:          f.Offset,
		})
	}
	ft.Sort()
	return ft
}

func (e *FrameTable) UnmarshalJSON(data []byte) error {
	var aux struct {
		Entries []FrameEntry `json:"entries"`
		Sorted  bool         `json:"sorted"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.entries = aux.Entries
	e.sorted = aux.Sorted
	return nil
}

func (e FrameTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Entries []FrameEntry `json:"entries"`
		Sorted  bool         `json:"sorted"`
	}{
		Entries: e.entries,
		Sorted:  e.sorted,
	})
}

func (e FrameTable) Iterate(yield func(FrameEntry) bool) {
	for _, entry := range e.entries {
		if !yield(entry) {
			return
		}
	}
}

func (e *FrameTable) Add(fe FrameEntry) {
	e.sorted = false
	e.entries = append(e.entries, fe)
}

// Get returns the entry at index, or ErrIndexOutOfRange.
func (e FrameTable) Get(index int) (FrameEntry, error) {
	if index < 0 || index >= len(e.entries) {
		return FrameEntry{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return e.entries[index], nil
}

func (e *FrameTable) Sort() {
	sort.Sort(e)
	e.sorted = true
}

func (e FrameTable) Len() int {
	return len(e.entries)
}

func (e FrameTable) Swap(i, j int) {
	e.entries[i], e.entries[j] = e.entries[j], e.entries[i]
}

func (e FrameTable) Less(i, j int) bool {
	return e.entries[i].Ordinal < e.entries[j].Ordinal
}

// Names returns the source names in ordinal order.
func (e FrameTable) Names() []string {
	names := make([]string, 0, len(e.entries))
	for fe := range e.Iterate {
		names = append(names, fe.Name)
	}
	return names
}

// GetRawSize returns the number of bytes that were compressed.
func (e FrameTable) GetRawSize() int64 {
	var total int64
	for fe := range e.Iterate {
		total += int64(fe.ReadBytes)
	}
	return total
}

// GetSourceSize returns the combined on-disk size of every frame.
func (e FrameTable) GetSourceSize() int64 {
	var total int64
	for fe := range e.Iterate {
		total += fe.SourceSize
	}
	return total
}

// GetCompressedSize returns the sum of payload lengths.
func (e FrameTable) GetCompressedSize() int64 {
	var total int64
	for fe := range e.Iterate {
		total += int64(fe.CompressedBytes)
	}
	return total
}

// GetTruncatedCount returns how many frames were cut to the buffer size.
func (e FrameTable) GetTruncatedCount() int {
	n := 0
	for fe := range e.Iterate {
		if fe.Truncated() {
			n++
		}
	}
	return n
}

// CheckIndex compares the table against the records found in an archive.
// It returns one message per disagreement; an empty result means they match.
func (e FrameTable) CheckIndex(index []vzip.IndexEntry) []string {
	var problems []string
	if len(index) != e.Len() {
		problems = append(problems, fmt.Sprintf("record count mismatch: manifest has %d, archive has %d", e.Len(), len(index)))
	}
	for i := 0; i < min(len(index), e.Len()); i++ {
		fe := e.entries[i]
		ie := index[i]
		if fe.Ordinal != ie.Ordinal {
			problems = append(problems, fmt.Sprintf("entry %d: ordinal %d, expected %d", i, fe.Ordinal, ie.Ordinal))
		}
		if fe.CompressedBytes != ie.Length {
			problems = append(problems, fmt.Sprintf("record %d (%s): length %d, manifest says %d", ie.Ordinal, fe.Name, ie.Length, fe.CompressedBytes))
		}
		if fe.Offset != ie.Offset {
			problems = append(problems, fmt.Sprintf("record %d (%s): offset %d, manifest says %d", ie.Ordinal, fe.Name, ie.Offset, fe.Offset))
		}
	}
	return problems
}

// ManifestPath returns the sidecar path of the frame table for an archive.
func ManifestPath(archivePath string) string {
	return archivePath + ".manifest.json"
}

func (e FrameTable) Save(path string) error {
	return WriteJSONFile(path, e)
}

// LoadFrameTable reads a frame table written by Save.
func LoadFrameTable(path string) (FrameTable, error) {
	var ft FrameTable
	f, err := os.Open(path)
	if err != nil {
		return ft, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&ft); err != nil {
		return ft, fmt.Errorf("decode %s: %w", path, err)
	}
	if !ft.sorted {
		ft.Sort()
	}
	return ft, nil
}

// WriteJSONFile writes any value as JSON to the specified file path.
// It creates the file and encodes the value using the standard JSON encoder.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(v)
}

// FrameNames returns a name for each of the count records in an archive.
// Names come from the archive's manifest sidecar when one exists and agrees
// on the record count; otherwise DefaultFrameName is used for every record.
// The manifest is returned when it was used, nil otherwise.
func FrameNames(archivePath string, count int, ext string) ([]string, *FrameTable) {
	if ft, err := LoadFrameTable(ManifestPath(archivePath)); err == nil && ft.Len() == count {
		return ft.Names(), &ft
	}
	names := make([]string, count)
	for i := range names {
		names[i] = DefaultFrameName(i, ext)
	}
	return names, nil
}

// RemoveSidecar deletes a sidecar file. A missing file is not an error.
func RemoveSidecar(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale sidecar: %w", err)
	}
	return nil
}
