package vzip

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFrames creates the named files in dir and returns the names sorted.
func writeFrames(t *testing.T, dir string, frames map[string][]byte) []string {
	t.Helper()
	names := make([]string, 0, len(frames))
	for name, data := range frames {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeAll decompresses every record of an archive.
func decodeAll(t *testing.T, codec Codec, archive []byte) [][]byte {
	t.Helper()
	var out [][]byte
	r := NewReader(bytes.NewReader(archive))
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		data, err := codec.Decompress(rec.Payload)
		require.NoError(t, err)
		out = append(out, data)
	}
}

func runPipeline(t *testing.T, cfg Config, index SourceIndex) ([]byte, Stats) {
	t.Helper()
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	var buf bytes.Buffer
	stats, err := p.Run(context.Background(), index, &buf)
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, p.Phase())
	return buf.Bytes(), stats
}

func TestPipeline_OrderedRecords(t *testing.T) {
	dir := t.TempDir()
	names := writeFrames(t, dir, map[string][]byte{
		"z.ppm": []byte("ZZZZ"),
		"a.ppm": []byte("AAAA"),
		"b.ppm": []byte("BBBB"),
	})

	cfg := DefaultConfig()
	cfg.Workers = 4
	archive, stats := runPipeline(t, cfg, NewSourceIndex(dir, names))

	codec, _ := LookupCodec(CodecZlib)
	got := decodeAll(t, codec, archive)
	require.Len(t, got, 3)
	assert.Equal(t, "AAAA", string(got[0]))
	assert.Equal(t, "BBBB", string(got[1]))
	assert.Equal(t, "ZZZZ", string(got[2]))

	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, int64(12), stats.RawBytes)
	assert.Equal(t, int64(len(archive)), stats.ArchiveBytes)
	assert.Equal(t, stats.CompressedBytes+3*PrefixSize, stats.ArchiveBytes)
	assert.Equal(t, 0, stats.Truncated)

	require.Len(t, stats.Frames, 3)
	for i, f := range stats.Frames {
		assert.Equal(t, i, f.Ordinal)
		assert.Equal(t, filepath.Join(dir, names[i]), f.Path)
		assert.Equal(t, 4, f.ReadBytes)
	}
}

func TestPipeline_TruncatesOversizedFrames(t *testing.T) {
	dir := t.TempDir()
	big := bytes.Repeat([]byte{0x42}, 300)
	names := writeFrames(t, dir, map[string][]byte{
		"big.ppm":   big,
		"small.ppm": []byte("tiny"),
	})

	cfg := DefaultConfig()
	cfg.BufferSize = 128
	archive, stats := runPipeline(t, cfg, NewSourceIndex(dir, names))

	codec, _ := LookupCodec(cfg.Codec)
	got := decodeAll(t, codec, archive)
	require.Len(t, got, 2)
	assert.Equal(t, big[:128], got[0], "payload holds exactly the buffer capacity")
	assert.Equal(t, "tiny", string(got[1]))

	assert.Equal(t, int64(128+4), stats.RawBytes)
	assert.Equal(t, 1, stats.Truncated)
	assert.True(t, stats.Frames[0].Truncated())
	assert.Equal(t, int64(300), stats.Frames[0].SourceSize)
	assert.False(t, stats.Frames[1].Truncated())
}

func TestPipeline_EmptyIndex(t *testing.T) {
	archive, stats := runPipeline(t, DefaultConfig(), NewSourceIndex(t.TempDir(), nil))
	assert.Empty(t, archive)
	assert.Equal(t, 0, stats.Files)
	assert.Equal(t, float64(0), stats.CompressionRate())
}

func TestPipeline_DeterministicAcrossWorkerCounts(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(7))
	frames := make(map[string][]byte)
	for i := range 40 {
		data := make([]byte, 1+rng.Intn(4096))
		// Half noise, half runs, so payload sizes vary.
		if i%2 == 0 {
			rng.Read(data)
		} else {
			for j := range data {
				data[j] = byte(j / 64)
			}
		}
		frames[string(rune('a'+i%26))+string(rune('a'+i/26))+".ppm"] = data
	}
	names := writeFrames(t, dir, frames)
	index := NewSourceIndex(dir, names)

	for _, codec := range CodecNames() {
		t.Run(codec, func(t *testing.T) {
			var reference []byte
			for _, workers := range []int{1, 3, 20} {
				cfg := DefaultConfig()
				cfg.Codec = codec
				cfg.Workers = workers
				archive, _ := runPipeline(t, cfg, index)
				if reference == nil {
					reference = archive
					continue
				}
				assert.True(t, bytes.Equal(reference, archive), "archive differs with %d workers", workers)
			}

			c, _ := LookupCodec(codec)
			got := decodeAll(t, c, reference)
			require.Len(t, got, len(names))
			for i, name := range names {
				assert.Equal(t, frames[name], got[i], "record %d (%s)", i, name)
			}
		})
	}
}

func TestPipeline_IncompressibleInputMayGrow(t *testing.T) {
	dir := t.TempDir()
	noise := make([]byte, 2048)
	rand.New(rand.NewSource(3)).Read(noise)
	names := writeFrames(t, dir, map[string][]byte{"n.ppm": noise})

	archive, stats := runPipeline(t, DefaultConfig(), NewSourceIndex(dir, names))
	assert.Equal(t, int64(len(archive)), stats.ArchiveBytes)
	// Nothing is assumed about shrinkage; the record must still round trip.
	codec, _ := LookupCodec(CodecZlib)
	got := decodeAll(t, codec, archive)
	require.Len(t, got, 1)
	assert.Equal(t, noise, got[0])
}

func TestPipeline_UnreadableFrameAborts(t *testing.T) {
	dir := t.TempDir()
	names := writeFrames(t, dir, map[string][]byte{"a.ppm": []byte("A")})
	names = append(names, "missing.ppm")

	p, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = p.Run(context.Background(), NewSourceIndex(dir, names), &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, PhaseFailed, p.Phase())
	assert.Empty(t, buf.Bytes(), "nothing is written before the barrier")
}

func TestPipeline_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	names := writeFrames(t, dir, map[string][]byte{"a.ppm": []byte("A")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)
	_, err = p.Run(ctx, NewSourceIndex(dir, names), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "zero buffer", mutate: func(c *Config) { c.BufferSize = 0 }, wantErr: ErrInvalidBufferSize},
		{name: "unknown codec", mutate: func(c *Config) { c.Codec = "rar" }, wantErr: ErrUnknownCodec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = NewPipeline(cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStats_CompressionRate(t *testing.T) {
	assert.InDelta(t, 75.0, Stats{RawBytes: 400, CompressedBytes: 100}.CompressionRate(), 1e-9)
	assert.InDelta(t, -50.0, Stats{RawBytes: 100, CompressedBytes: 150}.CompressionRate(), 1e-9)
}

// phaseLog prefixes every log line with the pipeline phase current when it
// was written.
type phaseLog struct {
	mu    sync.Mutex
	p     *Pipeline
	lines []string
}

func (l *phaseLog) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, l.p.Phase().String()+" | "+strings.TrimSpace(string(b)))
	return len(b), nil
}

func TestPipeline_PhaseOrder(t *testing.T) {
	dir := t.TempDir()
	frames := make(map[string][]byte)
	for i := range 12 {
		frames[string(rune('a'+i))+".ppm"] = bytes.Repeat([]byte{byte(i)}, 64)
	}
	names := writeFrames(t, dir, frames)

	rec := &phaseLog{}
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.Logger = log.New(rec, "", 0)
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	rec.p = p

	var buf bytes.Buffer
	_, err = p.Run(context.Background(), NewSourceIndex(dir, names), &buf)
	require.NoError(t, err)

	var phases []string
	workerLines := 0
	for _, line := range rec.lines {
		phase, msg, _ := strings.Cut(line, " | ")
		if after, ok := strings.CutPrefix(msg, "phase: "); ok {
			phases = append(phases, after)
			continue
		}
		if strings.HasPrefix(msg, "worker ") {
			workerLines++
			assert.Equal(t, PhaseCompressing.String(), phase, "worker output outside the compressing phase: %s", msg)
		}
	}
	assert.Equal(t, len(names), workerLines)
	assert.Equal(t, []string{"compressing", "barrier", "writing", "done"}, phases)
}
