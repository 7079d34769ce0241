package media

import (
	"bytes"
	"encoding/binary"
)

// id3v23 assembles an ID3v2.3 tag from pre-built frames.
func id3v23(frames ...[]byte) []byte {
	body := bytes.Join(frames, nil)
	size := len(body)

	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.Write([]byte{3, 0, 0})
	// syncsafe size
	buf.Write([]byte{
		byte(size >> 21 & 0x7f),
		byte(size >> 14 & 0x7f),
		byte(size >> 7 & 0x7f),
		byte(size & 0x7f),
	})
	buf.Write(body)
	return buf.Bytes()
}

func frame(id string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.Write([]byte{0, 0})
	buf.Write(payload)
	return buf.Bytes()
}

func textFrame(id, text string) []byte {
	return frame(id, append([]byte{0}, text...))
}

func apicFrame(mime string, data []byte) []byte {
	payload := []byte{0}
	payload = append(payload, mime...)
	payload = append(payload, 0)
	payload = append(payload, 3) // front cover
	payload = append(payload, 0) // empty description
	payload = append(payload, data...)
	return frame("APIC", payload)
}

// mp3Frames returns n silent MPEG-1 Layer III frames (128 kbps, 44.1 kHz, no padding).
func mp3Frames(n int) []byte {
	const frameLen = 417
	out := make([]byte, 0, n*frameLen)
	for i := 0; i < n; i++ {
		f := make([]byte, frameLen)
		f[0], f[1], f[2], f[3] = 0xFF, 0xFB, 0x90, 0x00
		out = append(out, f...)
	}
	return out
}
