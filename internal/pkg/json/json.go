//go:build amd64 || arm64

// Package json decodes remote API bodies with sonic on architectures it
// supports and falls back to go-json elsewhere.
package json

import (
	"io"

	"github.com/bytedance/sonic/decoder"
)

// Decoder wraps a sonic stream decoder.
type Decoder struct {
	dec *decoder.StreamDecoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: decoder.NewStreamDecoder(r)}
}

func (d *Decoder) Decode(v any) error {
	return d.dec.Decode(v)
}
