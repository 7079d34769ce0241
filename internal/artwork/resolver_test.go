package artwork

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/logger"
)

type stubTags map[string]*domain.Picture

func (s stubTags) embedded(_ context.Context, path string) ([]byte, bool) {
	pic, ok := s[path]
	if !ok || pic == nil || len(pic.Data) == 0 {
		return nil, false
	}
	return pic.Data, true
}

func constSource(data []byte) Source {
	return func(context.Context, string) ([]byte, bool) { return data, data != nil }
}

func newTestResolver(fs afero.Fs, tags stubTags) *Resolver {
	return NewResolver(
		NewStore(fs, cacheDir),
		NewTranscoder(),
		64,
		logger.NewTestLogger(),
		tags.embedded,
		SiblingFileSource(fs),
	)
}

func TestFirstOf(t *testing.T) {
	ctx := context.Background()

	data, ok := FirstOf(constSource(nil), constSource([]byte("b")), constSource([]byte("c")))(ctx, "/x")
	require.True(t, ok)
	assert.Equal(t, "b", string(data))

	_, ok = FirstOf()(ctx, "/x")
	assert.False(t, ok)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, ok = FirstOf(constSource([]byte("a")))(cancelled, "/x")
	assert.False(t, ok)
}

func TestSiblingFileSource_Priority(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/music/album/folder.jpg", []byte("folder"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/music/album/front.png", []byte("front"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/music/album/Cover.jpg", []byte("wrong case"), 0o644))
	require.NoError(t, fs.MkdirAll("/music/album/cover.png", 0o755)) // directory, ignored

	data, ok := SiblingFileSource(fs)(context.Background(), "/music/album/01.mp3")
	require.True(t, ok)
	assert.Equal(t, "folder", string(data))

	_, ok = SiblingFileSource(fs)(context.Background(), "/music/other/01.mp3")
	assert.False(t, ok)
}

func TestResolve_IdenticalArtworkSharesOneFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	art := encodePNG(t, 128, 128)
	resolver := newTestResolver(fs, stubTags{
		"/music/a.mp3": {MIMEType: "image/png", Data: art},
		"/music/b.mp3": {MIMEType: "image/png", Data: art},
	})

	refA, ok := resolver.Resolve(context.Background(), "/music/a.mp3")
	require.True(t, ok)
	refB, ok := resolver.Resolve(context.Background(), "/music/b.mp3")
	require.True(t, ok)
	assert.Equal(t, *refA, *refB)
	assert.True(t, strings.HasSuffix(*refA, ".png"))

	entries, err := afero.ReadDir(fs, cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	path, _ := PathFromRef(*refA)
	before, err := fs.Stat(path)
	require.NoError(t, err)

	again, ok := resolver.Resolve(context.Background(), "/music/a.mp3")
	require.True(t, ok)
	assert.Equal(t, *refA, *again)
	after, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestResolve_FallsBackToSibling(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/music/album/cover.jpg", encodeJPEG(t, 200, 100), 0o644))
	resolver := newTestResolver(fs, stubTags{})

	ref, ok := resolver.Resolve(context.Background(), "/music/album/track.flac")
	require.True(t, ok)

	path, ok := PathFromRef(*ref)
	require.True(t, ok)
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	w, h, format := decodeSize(t, data)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, w)
	assert.Equal(t, 64, h)
}

func TestResolve_UndecodableStoredVerbatim(t *testing.T) {
	fs := afero.NewMemMapFs()
	broken := []byte("GIF89a-but-truncated")
	resolver := newTestResolver(fs, stubTags{"/music/a.mp3": {Data: broken}})

	ref, ok := resolver.Resolve(context.Background(), "/music/a.mp3")
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(*ref, ".gif"))

	path, _ := PathFromRef(*ref)
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, broken, data)
}

func TestResolve_Absent(t *testing.T) {
	fs := afero.NewMemMapFs()
	resolver := newTestResolver(fs, stubTags{})
	ctx := context.Background()

	_, ok := resolver.Resolve(ctx, "/music/none.mp3")
	assert.False(t, ok)

	_, ok = resolver.Resolve(ctx, "blob:http://localhost/1")
	assert.False(t, ok)

	_, ok = resolver.Resolve(ctx, "")
	assert.False(t, ok)
}

func TestResolve_StoreFailureIsAbsent(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	resolver := NewResolver(NewStore(fs, cacheDir), NewTranscoder(), 64, nil, constSource(encodePNG(t, 8, 8)))

	_, ok := resolver.Resolve(context.Background(), "/music/a.mp3")
	assert.False(t, ok)
}

func TestCacheBytes(t *testing.T) {
	resolver := NewResolver(NewStore(afero.NewMemMapFs(), cacheDir), NewTranscoder(), 64, nil)

	_, err := resolver.CacheBytes(nil)
	assert.ErrorIs(t, err, domain.ErrNoCover)

	ref, err := resolver.CacheBytes(encodeJPEG(t, 32, 32))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "file://"))

	assert.True(t, resolver.Cached(ref))
	assert.False(t, resolver.Cached("file:///elsewhere/gone.png"))
}
