package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressor_RoundTrip(t *testing.T) {
	original := []byte(strings.Repeat(
		`{"name":"db.query","count":4,"total_seconds":2}`+"\n", 20,
	))

	tests := []struct {
		algorithm string
		encoding  string
		shrinks   bool
	}{
		{algorithm: CompressionNone, encoding: "", shrinks: false},
		{algorithm: CompressionGzip, encoding: "gzip", shrinks: true},
		{algorithm: CompressionZstd, encoding: "zstd", shrinks: true},
		{algorithm: CompressionZlib, encoding: "deflate", shrinks: true},
		{algorithm: CompressionSnappy, encoding: "snappy", shrinks: true},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			c, err := NewCompressor(tt.algorithm)
			require.NoError(t, err)
			defer c.Close()

			compressed, err := c.Compress(original)
			require.NoError(t, err)

			assert.Equal(t, tt.encoding, c.ContentEncoding())

			if tt.shrinks {
				assert.Less(t, len(compressed), len(original))
			}

			decompressed, err := Decompress(tt.algorithm, compressed)
			require.NoError(t, err)
			assert.Equal(t, original, decompressed)
		})
	}
}

func TestCompressor_EmptyAlgorithmPassesThrough(t *testing.T) {
	c, err := NewCompressor("")
	require.NoError(t, err)

	data := []byte("plain")
	out, err := c.Compress(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Empty(t, c.ContentEncoding())
	assert.NoError(t, c.Close())
}

func TestCompressor_Unsupported(t *testing.T) {
	_, err := NewCompressor("brotli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported compression algorithm")

	_, err = Decompress("brotli", nil)
	require.Error(t, err)
}

func TestValidCompression(t *testing.T) {
	assert.True(t, ValidCompression(""))
	assert.True(t, ValidCompression(CompressionSnappy))
	assert.False(t, ValidCompression("lz4"))
}
