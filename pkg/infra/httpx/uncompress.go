package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// DecodeChain decodes a response body according to its Content-Encoding value.
// Chained encodings ("gzip, br") are undone right to left. Supported: br, gzip,
// zstd, deflate (zlib-wrapped or raw).
func DecodeChain(contentEncoding string, body []byte) ([]byte, bool, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return body, false, nil
	}
	compressions := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(compressions) - 1; i >= 0; i-- {
		var err error
		switch strings.TrimSpace(strings.ToLower(compressions[i])) {
		case "br":
			body, err = io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
			if err != nil {
				return nil, false, err
			}
			changed = true
		case "gzip":
			body, err = readGzip(body)
			if err != nil {
				return nil, false, err
			}
			changed = true
		case "zstd":
			dec, err := zstd.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, false, err
			}
			out, err := io.ReadAll(dec)
			dec.Close()
			if err != nil {
				return nil, false, err
			}
			body = out
			changed = true
		case "deflate":
			body, err = readDeflate(body)
			if err != nil {
				return nil, false, err
			}
			changed = true
		case "compress", "identity", "":
		default:
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", compressions[i])
		}
	}
	return body, changed, nil
}

func readGzip(body []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(gr)
	cerr := gr.Close()
	if err != nil {
		return nil, err
	}
	return out, cerr
}

func readDeflate(body []byte) ([]byte, error) {
	if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		out, err := io.ReadAll(zr)
		cerr := zr.Close()
		if err != nil {
			return nil, err
		}
		return out, cerr
	}
	fr := flate.NewReader(bytes.NewReader(body))
	out, err := io.ReadAll(fr)
	cerr := fr.Close()
	if err != nil {
		return nil, err
	}
	return out, cerr
}
