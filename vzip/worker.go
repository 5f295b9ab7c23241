package vzip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// run is the state shared by every worker of one pipeline run.
type run struct {
	index      SourceIndex
	dispatcher *Dispatcher
	store      *ResultStore
	frames     []Frame // slot i is written only by the worker that claimed i
	codec      Codec
	bufferSize int
	rawBytes   atomic.Int64
	log        *log.Logger
}

type worker struct {
	id  int
	run *run
	buf []byte
	enc Encoder
}

// loop claims and compresses frames until the dispatcher runs dry, the
// context is cancelled or a frame fails.
func (w *worker) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ord, ok := w.run.dispatcher.ClaimNext()
		if !ok {
			return nil
		}
		if err := w.process(ord); err != nil {
			return err
		}
	}
}

func (w *worker) process(ord int) error {
	src := w.run.index.At(ord)

	// Buffers are allocated on the first claim so idle workers stay cheap.
	if w.buf == nil {
		w.buf = make([]byte, w.run.bufferSize)
	}
	if w.enc == nil {
		enc, err := w.run.codec.NewEncoder()
		if err != nil {
			return fmt.Errorf("worker %d: create %s encoder: %w", w.id, w.run.codec.Name(), err)
		}
		w.enc = enc
	}

	n, size, err := readFrame(src.Path, w.buf)
	if err != nil {
		return fmt.Errorf("read frame %d: %w", ord, err)
	}
	compressed, err := w.enc.Encode(w.buf[:n])
	if err != nil {
		return fmt.Errorf("compress frame %d (%s): %w", ord, src.Path, err)
	}

	// The encoder output is scratch space; the record gets its own copy.
	rec := Record{Ordinal: ord, Payload: bytes.Clone(compressed)}
	w.run.store.Put(rec)
	w.run.frames[ord] = Frame{
		Ordinal:         ord,
		Path:            src.Path,
		SourceSize:      size,
		ReadBytes:       n,
		CompressedBytes: rec.Len(),
	}
	w.run.rawBytes.Add(int64(n))

	w.run.log.Printf("worker %d: frame %d %s %d -> %d bytes", w.id, ord, src.Path, n, rec.Len())
	return nil
}

// readFrame fills buf with the start of the file at path and returns the
// number of bytes read along with the file's full size. A file larger than
// buf is cut short without error.
func readFrame(path string, buf []byte) (n int, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}
	n, err = io.ReadFull(f, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	return n, info.Size(), nil
}
