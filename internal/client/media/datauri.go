package media

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

const sniffLen = 512

// EncodeDataURI reads an image from r and returns it as a base64 data URI.
// maxBytes <= 0 disables the size check.
func EncodeDataURI(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", common.ErrMediaTooLarge, maxBytes)
	}

	t, ok := Sniff(data[:min(len(data), sniffLen)])
	if !ok {
		return "", common.ErrUnsupportedMedia
	}

	var b strings.Builder
	b.Grow(len("data:;base64,") + len(t.MIME) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(t.MIME)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

// EncodeFile is EncodeDataURI over the file at path.
func EncodeFile(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return EncodeDataURI(f, maxBytes)
}

// Describe returns the MIME type and decoded size of a data URI produced by
// EncodeDataURI.
func Describe(uri string) (mime string, size int, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", 0, common.ErrUnsupportedMedia
	}
	mime, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", 0, common.ErrUnsupportedMedia
	}
	return mime, base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload[max(0, len(payload)-2):], "="), nil
}
