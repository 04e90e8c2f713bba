package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipCompress(data []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(data)
	_ = gz.Close()
	return buf.Bytes()
}

func brCompress(data []byte) []byte {
	var buf bytes.Buffer
	br := brotli.NewWriter(&buf)
	_, _ = br.Write(data)
	_ = br.Close()
	return buf.Bytes()
}

func zstdCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zstd.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func rawDeflateCompress(data []byte) []byte {
	var buf bytes.Buffer
	dw, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	_, _ = dw.Write(data)
	_ = dw.Close()
	return buf.Bytes()
}

func TestDecodeChain_NoEncoding(t *testing.T) {
	plain := []byte(`[[{"label":"toxic","score":0.1}]]`)

	decoded, changed, err := DecodeChain("", plain)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, plain, decoded)
}

func TestDecodeChain_SingleEncodings(t *testing.T) {
	plain := []byte(`[{"label":"tabby cat","score":0.93}]`)
	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{name: "gzip", encoding: "gzip", body: gzipCompress(plain)},
		{name: "brotli", encoding: "br", body: brCompress(plain)},
		{name: "zstd", encoding: "zstd", body: zstdCompress(plain)},
		{name: "deflate zlib wrapped", encoding: "deflate", body: zlibCompress(plain)},
		{name: "deflate raw", encoding: "deflate", body: rawDeflateCompress(plain)},
		{name: "mixed case and spaces", encoding: "  GZip ", body: gzipCompress(plain)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, changed, err := DecodeChain(tt.encoding, tt.body)

			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, plain, decoded)
		})
	}
}

func TestDecodeChain_IdentityIsNoOp(t *testing.T) {
	plain := []byte("no-op encodings")

	decoded, changed, err := DecodeChain("identity, compress", plain)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, plain, decoded)
}

func TestDecodeChain_Chain(t *testing.T) {
	plain := []byte("chained payload")
	body := brCompress(gzipCompress(plain))

	decoded, changed, err := DecodeChain("gzip, br", body)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, plain, decoded)
}

func TestDecodeChain_UnknownEncoding(t *testing.T) {
	_, _, err := DecodeChain("snappy", []byte("data"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content-encoding")
}

func TestDecodeChain_CorruptGzip(t *testing.T) {
	_, _, err := DecodeChain("gzip", []byte("not gzip"))
	assert.Error(t, err)
}
