package artwork

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

// SiblingNames are the image files looked up next to an audio file, in priority order.
// Matching is exact, including case.
var SiblingNames = []string{
	"cover.jpg",
	"cover.png",
	"folder.jpg",
	"folder.png",
	"front.jpg",
	"front.png",
}

// Source yields candidate cover bytes for an audio file.
// It reports false when it has nothing to offer; errors are not surfaced.
type Source func(ctx context.Context, audioPath string) ([]byte, bool)

// FirstOf combines sources, returning the first one that yields bytes.
func FirstOf(sources ...Source) Source {
	return func(ctx context.Context, audioPath string) ([]byte, bool) {
		for _, src := range sources {
			if ctx.Err() != nil {
				return nil, false
			}
			if data, ok := src(ctx, audioPath); ok && len(data) > 0 {
				return data, true
			}
		}
		return nil, false
	}
}

// SiblingFileSource yields the first of names that exists in the audio file's directory.
// With no names, SiblingNames is used.
func SiblingFileSource(fsys afero.Fs, names ...string) Source {
	if len(names) == 0 {
		names = SiblingNames
	}
	return func(_ context.Context, audioPath string) ([]byte, bool) {
		dir := filepath.Dir(audioPath)
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			info, err := fsys.Stat(candidate)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			data, err := afero.ReadFile(fsys, candidate)
			if err != nil || len(data) == 0 {
				continue
			}
			return data, true
		}
		return nil, false
	}
}

// Resolver finds a cover for an audio file and caches a thumbnail of it.
type Resolver struct {
	source     Source
	transcoder *Transcoder
	store      *Store
	size       int
	logger     *slog.Logger
}

// NewResolver creates a resolver producing thumbnails of size pixels into store.
// Sources are tried in order.
func NewResolver(store *Store, transcoder *Transcoder, size int, logger *slog.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		source:     FirstOf(sources...),
		transcoder: transcoder,
		store:      store,
		size:       size,
		logger:     logger,
	}
}

// Resolve returns the cache reference of audioPath's cover.
// It reports false when no source had an image or caching failed.
func (r *Resolver) Resolve(ctx context.Context, audioPath string) (*string, bool) {
	if domain.IsTransientRef(audioPath) {
		return nil, false
	}

	data, ok := r.source(ctx, audioPath)
	if !ok {
		return nil, false
	}

	ref, err := r.CacheBytes(data)
	if err != nil {
		r.logger.Warn("failed to cache cover",
			slog.String("path", audioPath),
			slog.Any("error", err))
		return nil, false
	}
	return &ref, true
}

// CacheBytes stores a thumbnail of data and returns its reference.
// When data cannot be transcoded the original bytes are stored instead.
func (r *Resolver) CacheBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrNoCover
	}

	payload, ext := data, SniffExtension(data)
	if thumb, err := r.transcoder.Thumbnail(data, r.size); err == nil {
		payload, ext = thumb, ".png"
	} else {
		r.logger.Debug("transcode failed, storing original", slog.Any("error", err))
	}

	asset, err := r.store.Put(payload, ext)
	if err != nil {
		return "", fmt.Errorf("store cover: %w", err)
	}
	return asset.Ref, nil
}

// Cached reports whether ref is a reference this resolver's store still holds.
func (r *Resolver) Cached(ref string) bool {
	return r.store.Has(ref)
}
