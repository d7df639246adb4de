package valkey

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the payload size from which values are compressed.
const compressThreshold = 1024

// Stored values carry a one-byte header naming their encoding.
const (
	headerRaw  byte = 'r'
	headerZstd byte = 'z'
)

var errEmptyPayload = errors.New("empty cache payload")

// codec wraps values for storage. Marker results are repetitive JSON and
// shrink well under zstd.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) encode(value []byte) []byte {
	if len(value) < compressThreshold {
		out := make([]byte, 0, len(value)+1)
		out = append(out, headerRaw)
		return append(out, value...)
	}
	out := make([]byte, 1, len(value)/2+1)
	out[0] = headerZstd
	return c.enc.EncodeAll(value, out)
}

func (c *codec) decode(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, errEmptyPayload
	}
	switch stored[0] {
	case headerRaw:
		return stored[1:], nil
	case headerZstd:
		out, err := c.dec.DecodeAll(stored[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown cache payload header %q", stored[0])
	}
}

func (c *codec) close() {
	_ = c.enc.Close()
	c.dec.Close()
}
