package media

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/logger"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3, 4}

type stubProber struct {
	seconds float64
	err     error
	calls   int
}

func (s *stubProber) Probe(io.Reader) (float64, error) {
	s.calls++
	return s.seconds, s.err
}

func TestTagReader_ReadsID3v2(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := id3v23(
		textFrame("TIT2", "Night Drive"),
		textFrame("TPE1", "The Band"),
		textFrame("TPE2", "Various"),
		textFrame("TALB", "Roads"),
		textFrame("TOAL", "Roads (Original)"),
		apicFrame("image/png", pngMagic),
	)
	require.NoError(t, afero.WriteFile(fs, "/music/a.mp3", data, 0o644))

	prober := &stubProber{seconds: 181.5}
	reader := NewTagReader(fs, prober, logger.NewTestLogger())

	bundle, err := reader.ReadTags(context.Background(), "/music/a.mp3")
	require.NoError(t, err)

	assert.Equal(t, "Night Drive", bundle.Title)
	assert.Equal(t, "The Band", bundle.Artist)
	assert.Equal(t, []string{"The Band"}, bundle.Artists)
	assert.Equal(t, "Various", bundle.AlbumArtist)
	assert.Equal(t, "Roads", bundle.Album)
	assert.Equal(t, "Roads (Original)", bundle.OriginalAlbum)
	assert.Equal(t, 181.5, bundle.Duration)
	assert.Equal(t, 1, prober.calls)

	require.NotNil(t, bundle.Picture)
	assert.Equal(t, "image/png", bundle.Picture.MIMEType)
	assert.Equal(t, pngMagic, bundle.Picture.Data)
}

func TestTagReader_NonMP3SkipsProbe(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/music/a.m4a", id3v23(textFrame("TIT2", "x")), 0o644))

	prober := &stubProber{seconds: 10}
	reader := NewTagReader(fs, prober, nil)

	bundle, err := reader.ReadTags(context.Background(), "/music/a.m4a")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bundle.Duration)
	assert.Equal(t, 0, prober.calls)
}

func TestTagReader_ProbeFailureIsZero(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/music/a.mp3", id3v23(textFrame("TIT2", "x")), 0o644))

	reader := NewTagReader(fs, &stubProber{err: errors.New("garbage")}, logger.NewTestLogger())
	bundle, err := reader.ReadTags(context.Background(), "/music/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bundle.Duration)
}

func TestTagReader_Failures(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/music/empty.mp3", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/music/text.mp3", []byte("this is not audio at all"), 0o644))
	reader := NewTagReader(fs, nil, nil)
	ctx := context.Background()

	_, err := reader.ReadTags(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidFilePath)

	_, err = reader.ReadTags(ctx, "/music/missing.mp3")
	assert.Error(t, err)

	_, err = reader.ReadTags(ctx, "/music/empty.mp3")
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		_, err = reader.ReadTags(ctx, "/music/text.mp3")
	})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = reader.ReadTags(cancelled, "/music/text.mp3")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTagReader_ShortFilesFailWithoutPanicking(t *testing.T) {
	fs := afero.NewMemMapFs()
	inputs := map[string][]byte{
		"/music/tiny.mp3":   []byte("x"),
		"/music/notes.mp3":  []byte("no audio in this one"),
		"/music/near.flac":  make([]byte, 127),
		"/music/magic.ogg":  []byte("OggS\x00\x02 truncated"),
		"/music/header.mp3": []byte("ID3"),
	}
	for path, data := range inputs {
		require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
	}

	reader := NewTagReader(fs, NewMP3Prober(), logger.NewTestLogger())
	for path := range inputs {
		t.Run(path, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() {
				_, err = reader.ReadTags(context.Background(), path)
			})
			assert.Error(t, err)
		})
	}
}

func TestSplitArtists(t *testing.T) {
	assert.Nil(t, splitArtists("", ""))
	assert.Equal(t, []string{"A", "B"}, splitArtists("A\x00B", ""))
	assert.Equal(t, []string{"C", "D"}, splitArtists("A", "C; D"))
}

func TestRawString(t *testing.T) {
	raw := map[string]interface{}{
		"TOAL":          "  Old Album ",
		"originaltitle": "First Title",
		"APIC":          []byte{1},
	}
	assert.Equal(t, "Old Album", rawString(raw, originalAlbumKeys...))
	assert.Equal(t, "First Title", rawString(raw, "ORIGINALTITLE"))
	assert.Equal(t, "", rawString(raw, "APIC"))
}
