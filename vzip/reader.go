package vzip

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader decodes records from an archive stream in order.
type Reader struct {
	r      *bufio.Reader
	next   int
	offset int64
	prefix [PrefixSize]byte
}

// NewReader returns a Reader positioned at the first record of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next record. It returns io.EOF after the last complete
// record and ErrCorruptArchive if the stream ends inside a record.
func (r *Reader) Next() (Record, error) {
	n, err := r.readPrefix()
	if err != nil {
		return Record{}, err
	}
	var payload bytes.Buffer
	copied, err := io.CopyN(&payload, r.r, int64(n))
	if err != nil && !errors.Is(err, io.EOF) {
		return Record{}, err
	}
	if copied != int64(n) {
		return Record{}, fmt.Errorf("record %d at offset %d: %w: payload has %d of %d bytes",
			r.next, r.offset, ErrCorruptArchive, copied, n)
	}
	rec := Record{Ordinal: r.next, Payload: payload.Bytes()}
	r.next++
	r.offset += PrefixSize + int64(n)
	return rec, nil
}

func (r *Reader) readPrefix() (int, error) {
	_, err := io.ReadFull(r.r, r.prefix[:])
	switch {
	case errors.Is(err, io.EOF):
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return 0, fmt.Errorf("record %d at offset %d: %w: short length prefix", r.next, r.offset, ErrCorruptArchive)
	case err != nil:
		return 0, err
	}
	n := int32(binary.NativeEndian.Uint32(r.prefix[:]))
	if n < 0 {
		return 0, fmt.Errorf("record %d at offset %d: %w: %d", r.next, r.offset, ErrNegativeLength, n)
	}
	return int(n), nil
}

// IndexEntry locates one record inside an archive.
type IndexEntry struct {
	Ordinal int
	Offset  int64 // offset of the length prefix
	Length  int   // payload length
}

// PayloadOffset returns the offset of the first payload byte.
func (e IndexEntry) PayloadOffset() int64 {
	return e.Offset + PrefixSize
}

// ScanIndex walks the prefixes of an archive and returns the location of
// every record without keeping payloads in memory.
func ScanIndex(r io.Reader) ([]IndexEntry, error) {
	ar := NewReader(r)
	var entries []IndexEntry
	for {
		n, err := ar.readPrefix()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		skipped, err := ar.r.Discard(n)
		if skipped != n {
			return nil, fmt.Errorf("record %d at offset %d: %w: payload has %d of %d bytes",
				ar.next, ar.offset, ErrCorruptArchive, skipped, n)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, IndexEntry{Ordinal: ar.next, Offset: ar.offset, Length: n})
		ar.next++
		ar.offset += PrefixSize + int64(n)
	}
}

// ReadPayload reads the payload described by e from ra.
func ReadPayload(ra io.ReaderAt, e IndexEntry) ([]byte, error) {
	buf := make([]byte, e.Length)
	if _, err := ra.ReadAt(buf, e.PayloadOffset()); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("record %d: %w", e.Ordinal, ErrCorruptArchive)
		}
		return nil, err
	}
	return buf, nil
}
