package service

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

func TestIsFormatSupported(t *testing.T) {
	assert.True(t, IsFormatSupported("/music/a.mp3"))
	assert.True(t, IsFormatSupported("/music/B.FLAC"))
	assert.True(t, IsFormatSupported("song.m4a"))
	assert.False(t, IsFormatSupported("/music/cover.jpg"))
	assert.False(t, IsFormatSupported("/music/README"))

	formats := SupportedFormats()
	formats[0] = ".changed"
	assert.True(t, IsFormatSupported("x.mp3"), "SupportedFormats returns a copy")
}

func TestScanFolder(t *testing.T) {
	f := newLibraryFixture(t, fakeTags{}, nil)
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/music/a/01 First.mp3",
		"/music/a/02 Second.FLAC",
		"/music/a/cover.jpg",
		"/music/b/deep/Third.ogg",
		"/music/notes.txt",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	var scanned *domain.LibraryScannedEvent
	f.bus.Subscribe(domain.EventLibraryScanned, func(e domain.Event) {
		ev := e.(domain.LibraryScannedEvent)
		scanned = &ev
	})

	ctx := context.Background()
	tracks, err := f.library.ScanFolder(ctx, fs, "/music")
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "/music/a/01 First.mp3", tracks[0].Path)
	assert.Equal(t, "02 Second", tracks[1].Name)
	assert.Equal(t, "/music/b/deep/Third.ogg", tracks[2].Path)

	require.NotNil(t, scanned)
	assert.Equal(t, "/music", scanned.Path)
	assert.Equal(t, 3, scanned.Files)
	assert.Equal(t, 3, scanned.Added)

	// A second scan is a no-op for the library
	again, err := f.library.ScanFolder(ctx, fs, "/music")
	require.NoError(t, err)
	assert.Equal(t, tracks, again)
	assert.Len(t, f.library.Tracks(), 3)
}

func TestScanFolder_Errors(t *testing.T) {
	f := newLibraryFixture(t, fakeTags{}, nil)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/music/a.mp3", []byte("x"), 0o644))

	_, err := f.library.ScanFolder(context.Background(), fs, "/nowhere")
	assert.ErrorIs(t, err, domain.ErrInvalidFilePath)
	_, err = f.library.ScanFolder(context.Background(), fs, "/music/a.mp3")
	assert.ErrorIs(t, err, domain.ErrInvalidFilePath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.library.ScanFolder(ctx, fs, "/music")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.library.Tracks())
}
