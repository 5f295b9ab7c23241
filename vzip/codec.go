package vzip

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec names accepted by LookupCodec.
const (
	CodecZlib = "zlib"
	CodecZstd = "zstd"
	CodecLZ4  = "lz4"
)

// DefaultCodec is the codec the archive format was defined with.
const DefaultCodec = CodecZlib

// Codec compresses whole frames in one shot and reverses the process.
type Codec interface {
	Name() string
	// NewEncoder returns an encoder for use by a single goroutine.
	NewEncoder() (Encoder, error)
	// Decompress returns the original bytes of one payload. It is safe for
	// concurrent use.
	Decompress(payload []byte) ([]byte, error)
}

// Encoder compresses one complete input per call at the codec's highest
// level. The returned slice aliases the encoder's scratch space and is only
// valid until the next call.
type Encoder interface {
	Encode(src []byte) ([]byte, error)
}

var codecs = map[string]Codec{
	CodecZlib: zlibCodec{},
	CodecZstd: &zstdCodec{},
	CodecLZ4:  lz4Codec{},
}

// LookupCodec returns the codec registered under name.
func LookupCodec(name string) (Codec, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// CodecNames lists the registered codecs in sorted order.
func CodecNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// zlib

type zlibCodec struct{}

func (zlibCodec) Name() string { return CodecZlib }

func (zlibCodec) NewEncoder() (Encoder, error) {
	e := &zlibEncoder{}
	w, err := zlib.NewWriterLevel(&e.out, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	e.w = w
	return e, nil
}

func (zlibCodec) Decompress(payload []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type zlibEncoder struct {
	w   *zlib.Writer
	out bytes.Buffer
}

func (e *zlibEncoder) Encode(src []byte) ([]byte, error) {
	e.out.Reset()
	e.w.Reset(&e.out)
	if _, err := e.w.Write(src); err != nil {
		return nil, err
	}
	if err := e.w.Close(); err != nil {
		return nil, err
	}
	return e.out.Bytes(), nil
}

// zstd

type zstdCodec struct {
	once sync.Once
	dec  *zstd.Decoder
	err  error
}

func (*zstdCodec) Name() string { return CodecZstd }

func (*zstdCodec) NewEncoder() (Encoder, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, err
	}
	return &zstdEncoder{enc: enc}, nil
}

func (c *zstdCodec) Decompress(payload []byte) ([]byte, error) {
	// The decoder is shared by every caller and lives as long as the process.
	c.once.Do(func() {
		c.dec, c.err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	if c.err != nil {
		return nil, c.err
	}
	return c.dec.DecodeAll(payload, nil)
}

type zstdEncoder struct {
	enc *zstd.Encoder
	out []byte
}

func (e *zstdEncoder) Encode(src []byte) ([]byte, error) {
	e.out = e.enc.EncodeAll(src, e.out[:0])
	return e.out, nil
}

// lz4

type lz4Codec struct{}

func (lz4Codec) Name() string { return CodecLZ4 }

func (lz4Codec) NewEncoder() (Encoder, error) {
	e := &lz4Encoder{}
	e.w = lz4.NewWriter(&e.out)
	if err := e.w.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return nil, err
	}
	return e, nil
}

func (lz4Codec) Decompress(payload []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
}

type lz4Encoder struct {
	w   *lz4.Writer
	out bytes.Buffer
}

func (e *lz4Encoder) Encode(src []byte) ([]byte, error) {
	e.out.Reset()
	e.w.Reset(&e.out)
	if _, err := e.w.Write(src); err != nil {
		return nil, err
	}
	if err := e.w.Close(); err != nil {
		return nil, err
	}
	return e.out.Bytes(), nil
}
