// Package artwork derives, transcodes and caches cover images.
//
// The pipeline is: a Source yields raw image bytes, the Transcoder
// turns them into a bounded square PNG, and the Store writes the result
// under a content-hash filename so identical artwork is stored once.
package artwork

import "bytes"

// MIME types recognised by magic number.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEGIF  = "image/gif"
)

var magics = []struct {
	prefix []byte
	mime   string
	ext    string
}{
	{[]byte{0xFF, 0xD8}, MIMEJPEG, ".jpg"},
	{[]byte{0x89, 0x50}, MIMEPNG, ".png"},
	{[]byte{0x47, 0x49}, MIMEGIF, ".gif"},
}

// SniffMIME returns the image MIME type of data based on its first bytes.
// Unknown content is reported as JPEG.
func SniffMIME(data []byte) string {
	for _, m := range magics {
		if bytes.HasPrefix(data, m.prefix) {
			return m.mime
		}
	}
	return MIMEJPEG
}

// SniffExtension returns the file extension matching SniffMIME.
func SniffExtension(data []byte) string {
	for _, m := range magics {
		if bytes.HasPrefix(data, m.prefix) {
			return m.ext
		}
	}
	return ".jpg"
}
