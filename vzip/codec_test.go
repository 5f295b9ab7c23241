package vzip

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCodec(t *testing.T) {
	for _, name := range []string{CodecZlib, CodecZstd, CodecLZ4} {
		c, err := LookupCodec(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	_, err := LookupCodec("brotli")
	assert.ErrorIs(t, err, ErrUnknownCodec)

	assert.Equal(t, []string{"lz4", "zlib", "zstd"}, CodecNames())
}

func TestCodecs_RoundTrip(t *testing.T) {
	noise := make([]byte, 64<<10)
	rand.New(rand.NewSource(1)).Read(noise)

	inputs := map[string][]byte{
		"empty":          {},
		"short":          []byte("AAAA"),
		"repetitive":     bytes.Repeat([]byte("P6 640 480 255\n"), 4096),
		"incompressible": noise,
	}

	for _, name := range CodecNames() {
		codec, err := LookupCodec(name)
		require.NoError(t, err)
		enc, err := codec.NewEncoder()
		require.NoError(t, err)

		for label, in := range inputs {
			t.Run(name+"/"+label, func(t *testing.T) {
				out, err := enc.Encode(in)
				require.NoError(t, err)
				require.NotEmpty(t, out, "payload must be a complete stream even for empty input")

				payload := bytes.Clone(out)
				got, err := codec.Decompress(payload)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(in, got), "round trip mismatch")
			})
		}
	}
}

func TestCodecs_EncoderReuseIsDeterministic(t *testing.T) {
	a := bytes.Repeat([]byte("frame-a "), 1000)
	b := bytes.Repeat([]byte("frame-b!"), 700)

	for _, name := range CodecNames() {
		t.Run(name, func(t *testing.T) {
			codec, err := LookupCodec(name)
			require.NoError(t, err)

			fresh, err := codec.NewEncoder()
			require.NoError(t, err)
			want, err := fresh.Encode(b)
			require.NoError(t, err)
			want = bytes.Clone(want)

			reused, err := codec.NewEncoder()
			require.NoError(t, err)
			_, err = reused.Encode(a)
			require.NoError(t, err)
			got, err := reused.Encode(b)
			require.NoError(t, err)

			assert.Equal(t, want, got, "encoder state leaked between inputs")
		})
	}
}

func TestZstd_ConcurrentDecompress(t *testing.T) {
	codec, err := LookupCodec(CodecZstd)
	require.NoError(t, err)
	enc, err := codec.NewEncoder()
	require.NoError(t, err)

	inputs := make([][]byte, 8)
	payloads := make([][]byte, len(inputs))
	for i := range inputs {
		inputs[i] = bytes.Repeat([]byte{byte('a' + i)}, 4096*(i+1))
		out, err := enc.Encode(inputs[i])
		require.NoError(t, err)
		payloads[i] = bytes.Clone(out)
	}

	var wg sync.WaitGroup
	errs := make([]error, 64)
	for g := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			i := g % len(payloads)
			got, err := codec.Decompress(payloads[i])
			if err == nil && !bytes.Equal(got, inputs[i]) {
				err = assert.AnError
			}
			errs[g] = err
		}()
	}
	wg.Wait()
	for g, err := range errs {
		assert.NoError(t, err, "goroutine %d", g)
	}
}
