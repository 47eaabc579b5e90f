// Package token encodes page tokens: opaque strings carrying the input of
// a filter and the page to resume at.
//
// A token is the MessagePack payload compressed with ZStandard and encoded
// with unpadded URL-safe base64, so it can travel in a query string.
package token

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/hugr-lab/sqlfilter/internal/msgpack"
)

const version = 1

// Payload is the content of a page token.
type Payload struct {
	Version int            `msgpack:"v"`
	Filter  string         `msgpack:"f"`
	Page    int            `msgpack:"p"`
	Data    map[string]any `msgpack:"d,omitempty"`
}

// Codec encodes and decodes tokens.
// Safe for concurrent use from multiple goroutines.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a codec. Caller must call Close() when done.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Encode returns the token of p.
func (c *Codec) Encode(p Payload) (string, error) {
	if p.Filter == "" {
		return "", fmt.Errorf("token filter name cannot be empty")
	}
	if p.Page < 1 {
		return "", fmt.Errorf("token page must be positive, got %d", p.Page)
	}
	p.Version = version

	raw, err := msgpack.Encode(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	compressed := c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)))
	return base64.RawURLEncoding.EncodeToString(compressed), nil
}

// Decode parses a token produced by Encode.
func (c *Codec) Decode(tok string) (*Payload, error) {
	if tok == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	compressed, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress token: %w", err)
	}

	var p Payload
	if err := msgpack.Decode(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	if p.Version != version {
		return nil, fmt.Errorf("unsupported token version %d", p.Version)
	}
	if p.Filter == "" {
		return nil, fmt.Errorf("decoded token has empty filter name")
	}
	if p.Page < 1 {
		return nil, fmt.Errorf("decoded token has invalid page %d", p.Page)
	}
	if p.Data == nil {
		p.Data = map[string]any{}
	}
	return &p, nil
}

// Close releases codec resources.
func (c *Codec) Close() {
	if c.encoder != nil {
		_ = c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

var defaultCodec = sync.OnceValues(NewCodec)

// Encode returns the token of p using a shared codec.
func Encode(p Payload) (string, error) {
	c, err := defaultCodec()
	if err != nil {
		return "", err
	}
	return c.Encode(p)
}

// Decode parses tok using a shared codec.
func Decode(tok string) (*Payload, error) {
	c, err := defaultCodec()
	if err != nil {
		return nil, err
	}
	return c.Decode(tok)
}
