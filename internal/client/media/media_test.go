package media

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append(append([]byte{}, pngMagic...), 0, 0, 0, 13, 'I', 'H', 'D', 'R')

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		kind Kind
		ok   bool
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, KindJPEG, true},
		{"png", pngBytes, KindPNG, true},
		{"gif", []byte("GIF89a......"), KindGIF, true},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), KindWEBP, true},
		{"avif", []byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00"), KindAVIF, true},
		{"svg", []byte("  <svg xmlns='http://www.w3.org/2000/svg'></svg>"), KindSVG, true},
		{"xml svg", []byte(`<?xml version="1.0"?><svg></svg>`), KindSVG, true},
		{"plain xml", []byte(`<?xml version="1.0"?><note/>`), "", false},
		{"text", []byte("hello"), "", false},
		{"empty", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sniff(tt.head)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, got.Kind)
		})
	}
}

func TestEncodeDataURI(t *testing.T) {
	uri, err := EncodeDataURI(bytes.NewReader(pngBytes), 1024)
	require.NoError(t, err)

	prefix := "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, decoded)

	mime, size, err := Describe(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, len(pngBytes), size)
}

func TestEncodeDataURI_Limits(t *testing.T) {
	_, err := EncodeDataURI(bytes.NewReader(pngBytes), int64(len(pngBytes)-1))
	assert.ErrorIs(t, err, common.ErrMediaTooLarge)

	_, err = EncodeDataURI(bytes.NewReader(pngBytes), int64(len(pngBytes)))
	assert.NoError(t, err, "exactly at the limit is fine")

	_, err = EncodeDataURI(bytes.NewReader(pngBytes), 0)
	assert.NoError(t, err, "0 disables the limit")
}

func TestEncodeDataURI_Unsupported(t *testing.T) {
	_, err := EncodeDataURI(strings.NewReader("just text"), 0)
	assert.ErrorIs(t, err, common.ErrUnsupportedMedia)
}

func TestEncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o600))

	uri, err := EncodeFile(path, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, err = EncodeFile(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.Error(t, err)
}

func TestDescribe_Invalid(t *testing.T) {
	for _, s := range []string{"", "http://x/y.png", "data:image/png,raw"} {
		_, _, err := Describe(s)
		assert.ErrorIs(t, err, common.ErrUnsupportedMedia, s)
	}
}
