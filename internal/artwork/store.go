package artwork

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Asset is a stored cache entry.
type Asset struct {
	// Path is the location of the file inside the store's file system
	Path string

	// Ref is the stable reference handed to the presentation layer
	Ref string
}

// Store is a content-addressed directory of image files.
// Files are named after the SHA-256 of their content and never rewritten.
//
// Thread-safety: Put calls are serialized, so concurrent puts of the same
// bytes write the file once.
type Store struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir on fs.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put stores data under its content hash with the given extension and returns the asset.
// When a file with the same name already exists nothing is written.
func (s *Store) Put(data []byte, ext string) (Asset, error) {
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("refusing to store empty image")
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	sum := sha256.Sum256(data)
	path := filepath.Join(s.dir, hex.EncodeToString(sum[:])+ext)
	asset := Asset{Path: path, Ref: FileRef(path)}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if exists {
		return asset, nil
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return Asset{}, fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, ".tmp-*")
	if err != nil {
		return Asset{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = s.fs.Remove(tmpName)
		if werr == nil {
			werr = cerr
		}
		return Asset{}, fmt.Errorf("failed to write %s: %w", path, werr)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return Asset{}, fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return asset, nil
}

// Has reports whether ref points at a file that exists in the store.
func (s *Store) Has(ref string) bool {
	path, ok := PathFromRef(ref)
	if !ok || filepath.Dir(path) != filepath.Clean(s.dir) {
		return false
	}
	info, err := s.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FileRef converts an absolute path to a file:// URL.
func FileRef(path string) string {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}

// PathFromRef is the inverse of FileRef.
func PathFromRef(ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return "", false
	}
	path := u.Path
	// file:///C:/x on Windows
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), true
}
