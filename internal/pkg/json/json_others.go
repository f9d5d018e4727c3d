//go:build !amd64 && !arm64

package json

import (
	"io"

	"github.com/goccy/go-json"
)

// Decoder wraps a go-json decoder.
type Decoder struct {
	dec *json.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

func (d *Decoder) Decode(v any) error {
	return d.dec.Decode(v)
}
