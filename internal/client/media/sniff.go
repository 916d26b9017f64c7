// Package media turns uploaded images into self-contained data URIs.
package media

import (
	"bytes"
	"strings"
)

type Kind string

const (
	KindJPEG Kind = "jpeg"
	KindPNG  Kind = "png"
	KindGIF  Kind = "gif"
	KindWEBP Kind = "webp"
	KindAVIF Kind = "avif"
	KindSVG  Kind = "svg"
)

// Type is a recognised image format.
type Type struct {
	Kind Kind
	MIME string
}

// Sniff identifies an image from its leading bytes. ok is false for
// anything that is not a supported image.
func Sniff(head []byte) (t Type, ok bool) {
	switch {
	case len(head) == 0:
		return Type{}, false
	case isJPEG(head):
		return Type{Kind: KindJPEG, MIME: "image/jpeg"}, true
	case isPNG(head):
		return Type{Kind: KindPNG, MIME: "image/png"}, true
	case isGIF(head):
		return Type{Kind: KindGIF, MIME: "image/gif"}, true
	case isWEBP(head):
		return Type{Kind: KindWEBP, MIME: "image/webp"}, true
	case isAVIF(head):
		return Type{Kind: KindAVIF, MIME: "image/avif"}, true
	case isSVG(head):
		return Type{Kind: KindSVG, MIME: "image/svg+xml"}, true
	}
	return Type{}, false
}

func isJPEG(head []byte) bool {
	return len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func isPNG(head []byte) bool {
	return bytes.HasPrefix(head, pngMagic)
}

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP"))
}

func isAVIF(head []byte) bool {
	return len(head) >= 12 && string(head[4:8]) == "ftyp" && bytes.Contains(head[8:], []byte("avif"))
}

func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	return strings.HasPrefix(trimmed, "<svg") || (strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg"))
}
