package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecoderDecodesNestedObject(t *testing.T) {
	var body struct {
		Embedded *struct {
			Total int `json:"total"`
		} `json:"_embedded"`
		Href string `json:"href"`
	}
	err := NewDecoder(strings.NewReader(`{"_embedded":{"total":3},"href":"https://x/y"}`)).Decode(&body)
	require.NoError(t, err)
	require.NotNil(t, body.Embedded)
	require.Equal(t, 3, body.Embedded.Total)
	require.Equal(t, "https://x/y", body.Href)
}

func TestDecoderRejectsMalformedInput(t *testing.T) {
	var v map[string]any
	err := NewDecoder(strings.NewReader(`{"href":`)).Decode(&v)
	require.Error(t, err)
}
