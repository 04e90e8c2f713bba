package classifier

import (
	"encoding/base64"
	"strings"
)

const dataURIImagePrefix = "data:image"

// Content is the payload of a moderation request. Text arrives as a string;
// images arrive as a data-URI string or as raw bytes.
type Content struct {
	Value string
	Bytes []byte
}

func TextContent(text string) Content {
	return Content{Value: text}
}

func RawContent(data []byte) Content {
	return Content{Bytes: data}
}

func (c Content) Empty() bool {
	return c.Value == "" && len(c.Bytes) == 0
}

// Text returns the textual form of the content.
func (c Content) Text() string {
	if c.Value != "" {
		return c.Value
	}
	return string(c.Bytes)
}

// Key is a stable representation used for cache keys.
func (c Content) Key() []byte {
	if len(c.Bytes) > 0 {
		return c.Bytes
	}
	return []byte(c.Value)
}

// ImageBytes returns the raw image bytes. A data-URI string has its scheme
// prefix stripped and its payload base64-decoded; raw bytes and any other
// string pass through unchanged.
func (c Content) ImageBytes() ([]byte, error) {
	if len(c.Bytes) > 0 {
		return c.Bytes, nil
	}
	if !strings.HasPrefix(c.Value, dataURIImagePrefix) {
		return []byte(c.Value), nil
	}
	_, payload, ok := strings.Cut(c.Value, ",")
	if !ok {
		return nil, errMalformedDataURI
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, wrap("invalid base64 image payload", err)
	}
	if len(data) == 0 {
		return nil, errMalformedDataURI
	}
	return data, nil
}
