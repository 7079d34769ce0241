package artwork

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cacheDir = "/cache/covers"

func TestStore_PutIsContentAddressed(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, cacheDir)
	data := []byte("image bytes")

	asset, err := store.Put(data, ".png")
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, filepath.Join(cacheDir, hex.EncodeToString(sum[:])+".png"), asset.Path)
	assert.Equal(t, "file://"+filepath.ToSlash(asset.Path), asset.Ref)

	stored, err := afero.ReadFile(fs, asset.Path)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestStore_PutIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, cacheDir)
	data := []byte("same artwork")

	first, err := store.Put(data, "png")
	require.NoError(t, err)
	before, err := fs.Stat(first.Path)
	require.NoError(t, err)

	second, err := store.Put(data, ".png")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	after, err := fs.Stat(first.Path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())

	entries, err := afero.ReadDir(fs, cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_ExistingFileNotOverwritten(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, cacheDir)
	data := []byte("payload")

	sum := sha256.Sum256(data)
	path := filepath.Join(cacheDir, hex.EncodeToString(sum[:])+".jpg")
	require.NoError(t, afero.WriteFile(fs, path, []byte("pre-existing"), 0o644))

	_, err := store.Put(data, ".jpg")
	require.NoError(t, err)

	stored, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "pre-existing", string(stored))
}

// renameCountingFs counts renames onto target.
type renameCountingFs struct {
	afero.Fs
	target  string
	renames atomic.Int32
}

func (r *renameCountingFs) Rename(oldname, newname string) error {
	if newname == r.target {
		r.renames.Add(1)
	}
	return r.Fs.Rename(oldname, newname)
}

func TestStore_ConcurrentPutsWriteOnce(t *testing.T) {
	data := []byte("shared artwork")
	sum := sha256.Sum256(data)
	target := filepath.Join(cacheDir, hex.EncodeToString(sum[:])+".png")

	fs := &renameCountingFs{Fs: afero.NewMemMapFs(), target: target}
	store := NewStore(fs, cacheDir)

	var wg sync.WaitGroup
	refs := make([]string, 16)
	for i := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			asset, err := store.Put(data, ".png")
			if assert.NoError(t, err) {
				refs[i] = asset.Ref
			}
		}()
	}
	wg.Wait()

	for _, ref := range refs {
		assert.Equal(t, refs[0], ref)
	}
	assert.Equal(t, int32(1), fs.renames.Load())

	entries, err := afero.ReadDir(fs, cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Errors(t *testing.T) {
	_, err := NewStore(afero.NewMemMapFs(), cacheDir).Put(nil, ".png")
	assert.Error(t, err)

	_, err = NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), cacheDir).Put([]byte("x"), ".png")
	assert.Error(t, err)
}

func TestStore_Has(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, cacheDir)

	asset, err := store.Put([]byte("x"), ".png")
	require.NoError(t, err)

	assert.True(t, store.Has(asset.Ref))
	assert.False(t, store.Has("file:///elsewhere/x.png"))
	assert.False(t, store.Has("data:image/png;base64,AAAA"))
	assert.False(t, NewStore(fs, "/cache/other").Has(asset.Ref))
}

func TestFileRefRoundTrip(t *testing.T) {
	ref := FileRef("/cache/covers/a b.png")
	assert.Equal(t, "file:///cache/covers/a%20b.png", ref)

	path, ok := PathFromRef(ref)
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/cache/covers/a b.png"), path)

	_, ok = PathFromRef("https://example.com/a.png")
	assert.False(t, ok)
}
