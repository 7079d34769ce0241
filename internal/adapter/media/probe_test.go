package media

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMP3Prober_SumsFrames(t *testing.T) {
	prober := NewMP3Prober()

	seconds, err := prober.Probe(bytes.NewReader(mp3Frames(40)))
	require.NoError(t, err)

	// 40 frames * 1152 samples / 44100 Hz
	assert.InDelta(t, 40*1152.0/44100.0, seconds, 0.05)
}

func TestMP3Prober_EmptyStream(t *testing.T) {
	_, err := NewMP3Prober().Probe(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestMP3Prober_Garbage(t *testing.T) {
	_, err := NewMP3Prober().Probe(bytes.NewReader([]byte("definitely not an mpeg stream")))
	assert.Error(t, err)
}
