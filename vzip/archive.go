package vzip

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// PrefixSize is the width of the length prefix in front of every record.
const PrefixSize = 4

// ArchiveWriter appends length-prefixed records to an archive stream.
// Prefixes are signed 32-bit integers in native byte order, the layout
// existing archives were written with.
type ArchiveWriter struct {
	w            *bufio.Writer
	prefix       [PrefixSize]byte
	records      int
	payloadBytes int64
	archiveBytes int64
}

// NewArchiveWriter returns a writer that buffers output to w.
// Call Flush once the last record has been written.
func NewArchiveWriter(w io.Writer) *ArchiveWriter {
	return &ArchiveWriter{w: bufio.NewWriter(w)}
}

// WriteRecord writes rec and returns the archive offset of its prefix.
func (a *ArchiveWriter) WriteRecord(rec Record) (int64, error) {
	if rec.Len() > math.MaxInt32 {
		return 0, fmt.Errorf("record %d: %w (%d bytes)", rec.Ordinal, ErrRecordTooLarge, rec.Len())
	}
	offset := a.archiveBytes
	binary.NativeEndian.PutUint32(a.prefix[:], uint32(int32(rec.Len())))
	if _, err := a.w.Write(a.prefix[:]); err != nil {
		return 0, fmt.Errorf("write record %d prefix: %w", rec.Ordinal, err)
	}
	if _, err := a.w.Write(rec.Payload); err != nil {
		return 0, fmt.Errorf("write record %d payload: %w", rec.Ordinal, err)
	}
	a.records++
	a.payloadBytes += int64(rec.Len())
	a.archiveBytes += PrefixSize + int64(rec.Len())
	return offset, nil
}

// Flush writes any buffered data to the underlying writer.
func (a *ArchiveWriter) Flush() error {
	return a.w.Flush()
}

// Records returns the number of records written so far.
func (a *ArchiveWriter) Records() int { return a.records }

// PayloadBytes returns the total compressed bytes written, prefixes excluded.
func (a *ArchiveWriter) PayloadBytes() int64 { return a.payloadBytes }

// ArchiveBytes returns the total bytes written, prefixes included.
func (a *ArchiveWriter) ArchiveBytes() int64 { return a.archiveBytes }
