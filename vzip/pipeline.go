package vzip

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Phase is the stage a Pipeline is in.
type Phase int32

const (
	PhaseEnumerating Phase = iota // waiting for a SourceIndex
	PhaseCompressing              // workers are running
	PhaseBarrier                  // every worker has returned; waiting on the join
	PhaseWriting                  // draining results into the archive
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseEnumerating:
		return "enumerating"
	case PhaseCompressing:
		return "compressing"
	case PhaseBarrier:
		return "barrier"
	case PhaseWriting:
		return "writing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Frame describes how one source frame ended up in the archive.
type Frame struct {
	Ordinal         int
	Path            string
	SourceSize      int64 // size of the file on disk
	ReadBytes       int   // bytes compressed, at most the buffer size
	CompressedBytes int   // payload length, prefix excluded
	Offset          int64 // archive offset of the record's length prefix
}

// Truncated reports whether the frame was larger than the read buffer.
func (f Frame) Truncated() bool {
	return f.SourceSize > int64(f.ReadBytes)
}

// Stats summarises a completed run.
type Stats struct {
	Codec           string
	Workers         int
	BufferSize      int
	Files           int
	Truncated       int
	RawBytes        int64 // bytes read from all frames
	CompressedBytes int64 // sum of payload lengths
	ArchiveBytes    int64 // sum of PrefixSize + payload length
	Duration        time.Duration
	Frames          []Frame
}

// CompressionRate returns the space saved as a percentage of the raw bytes,
// ignoring length prefixes. It is negative when compression expanded the
// input and zero when nothing was read.
func (s Stats) CompressionRate() float64 {
	if s.RawBytes == 0 {
		return 0
	}
	return 100 * float64(s.RawBytes-s.CompressedBytes) / float64(s.RawBytes)
}

// Pipeline compresses a SourceIndex into an archive.
type Pipeline struct {
	cfg   Config
	codec Codec
	log   *log.Logger
	phase atomic.Int32
}

// NewPipeline validates cfg and returns a Pipeline ready to Run.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := LookupCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{cfg: cfg, codec: codec, log: logger}, nil
}

// Phase returns the stage the pipeline is currently in.
func (p *Pipeline) Phase() Phase {
	return Phase(p.phase.Load())
}

func (p *Pipeline) setPhase(ph Phase) {
	p.phase.Store(int32(ph))
	p.log.Printf("phase: %s", ph)
}

// Run compresses every frame of index with a fixed pool of workers and, once
// all of them have returned, writes the records to out in ordinal order.
//
// The first failure of any worker cancels the others and is returned; out
// may then hold nothing or a partial archive and should be discarded.
func (p *Pipeline) Run(ctx context.Context, index SourceIndex, out io.Writer) (Stats, error) {
	start := time.Now()
	total := index.Len()

	r := &run{
		index:      index,
		dispatcher: NewDispatcher(total),
		store:      NewResultStore(total),
		frames:     make([]Frame, total),
		codec:      p.codec,
		bufferSize: p.cfg.BufferSize,
		log:        p.log,
	}

	p.setPhase(PhaseCompressing)
	g, gctx := errgroup.WithContext(ctx)
	var live atomic.Int32
	live.Store(int32(p.cfg.Workers))
	for id := range p.cfg.Workers {
		w := &worker{id: id, run: r}
		g.Go(func() error {
			// The last worker to return moves the run into the barrier.
			defer func() {
				if live.Add(-1) == 0 {
					p.setPhase(PhaseBarrier)
				}
			}()
			return w.loop(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		p.log.Printf("aborting: %v (%d of %d frames never claimed)", err, r.dispatcher.Remaining(), total)
		p.setPhase(PhaseFailed)
		return Stats{}, err
	}
	if missing := r.store.Missing(); len(missing) > 0 {
		p.setPhase(PhaseFailed)
		return Stats{}, fmt.Errorf("%d of %d frames: %w", len(missing), total, ErrMissingRecord)
	}

	p.setPhase(PhaseWriting)
	aw := NewArchiveWriter(out)
	for i := range total {
		rec, err := r.store.Take(i)
		if err != nil {
			p.setPhase(PhaseFailed)
			return Stats{}, err
		}
		offset, err := aw.WriteRecord(rec)
		if err != nil {
			p.setPhase(PhaseFailed)
			return Stats{}, err
		}
		r.frames[i].Offset = offset
	}
	if err := aw.Flush(); err != nil {
		p.setPhase(PhaseFailed)
		return Stats{}, fmt.Errorf("flush archive: %w", err)
	}

	stats := Stats{
		Codec:           p.codec.Name(),
		Workers:         p.cfg.Workers,
		BufferSize:      p.cfg.BufferSize,
		Files:           aw.Records(),
		RawBytes:        r.rawBytes.Load(),
		CompressedBytes: aw.PayloadBytes(),
		ArchiveBytes:    aw.ArchiveBytes(),
		Duration:        time.Since(start),
		Frames:          r.frames,
	}
	for _, f := range r.frames {
		if f.Truncated() {
			stats.Truncated++
		}
	}
	p.setPhase(PhaseDone)
	return stats, nil
}
