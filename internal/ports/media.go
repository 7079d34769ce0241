package ports

import (
	"context"
	"io"

	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

// TagReader parses embedded tag metadata from a local audio file.
// This abstracts the underlying tag library.
type TagReader interface {
	// ReadTags returns the tag bundle of the file at path.
	// Returns an error for unreadable files or files without recognizable tags.
	ReadTags(ctx context.Context, path string) (*domain.TagBundle, error)
}

// DurationProber derives a media duration by decoding the stream.
type DurationProber interface {
	// Probe returns the duration of the media stream in seconds.
	// Returns an error if the stream cannot be decoded.
	Probe(r io.Reader) (float64, error)
}

// Playback is the subset of the playback transport the library needs.
//
// Thread-safety: Implementations must be thread-safe.
type Playback interface {
	// CurrentTrackID returns the id of the active playback target, or "".
	CurrentTrackID() string

	// Stop stops playback and clears the active track.
	Stop() error
}

// CoverResolver finds and caches the cover of a local audio file.
type CoverResolver interface {
	// Resolve returns the cache reference of the file's cover.
	// Returns false when no cover is available; never fails the caller.
	Resolve(ctx context.Context, path string) (*string, bool)

	// Cached reports whether ref points at a cover file that still exists.
	Cached(ref string) bool
}

// ArtworkCache stores raw image bytes and returns a stable reference.
type ArtworkCache interface {
	// CacheBytes transcodes and stores data, returning its reference.
	CacheBytes(data []byte) (string, error)
}
