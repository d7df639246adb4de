package valkey

import (
	"bytes"
	"strings"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	c, err := newCodec()
	if err != nil {
		t.Fatalf("newCodec: %v", err)
	}
	defer c.close()

	small := []byte(`{"id":"spot-1"}`)
	large := []byte(strings.Repeat(`{"id":"spot-1","coordinates":[29.01,41.02]},`, 200))

	for name, in := range map[string][]byte{"small": small, "large": large} {
		stored := c.encode(in)
		out, err := c.decode(stored)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if !bytes.Equal(in, out) {
			t.Errorf("%s: round trip mismatch", name)
		}
	}

	if c.encode(small)[0] != headerRaw {
		t.Error("small payload should be stored raw")
	}
	stored := c.encode(large)
	if stored[0] != headerZstd || len(stored) >= len(large) {
		t.Errorf("large payload should be compressed, got %d bytes from %d", len(stored), len(large))
	}
}

func TestCodec_RejectsUnknownPayload(t *testing.T) {
	c, err := newCodec()
	if err != nil {
		t.Fatalf("newCodec: %v", err)
	}
	defer c.close()

	if _, err := c.decode(nil); err == nil {
		t.Error("expected error for empty payload")
	}
	if _, err := c.decode([]byte("xyz")); err == nil {
		t.Error("expected error for unknown header")
	}
	if _, err := c.decode([]byte{headerZstd, 1, 2, 3}); err == nil {
		t.Error("expected error for corrupt zstd frame")
	}
}
