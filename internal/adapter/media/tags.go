// Package media provides tag parsing and duration probing for local audio files.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// Raw tag keys consulted for fields dhowden/tag does not expose directly.
// ID3v2 frame ids are upper case, Vorbis comment keys lower case.
var (
	originalTitleKeys = []string{"originaltitle", "original_title", "TXXX:ORIGINALTITLE"}
	originalAlbumKeys = []string{"TOAL", "TOT", "originalalbum", "original_album"}
	artistsKeys       = []string{"artists", "TXXX:ARTISTS"}
)

// ErrMalformedTags is returned when the tag parser gives up on corrupt input.
var ErrMalformedTags = errors.New("malformed tags")

// TagReader implements ports.TagReader with github.com/dhowden/tag.
// Files are opened through the injected afero.Fs.
type TagReader struct {
	fs     afero.Fs
	prober ports.DurationProber
	logger *slog.Logger
}

// NewTagReader creates a tag reader. prober may be nil, in which case
// durations are always reported as 0.
func NewTagReader(fsys afero.Fs, prober ports.DurationProber, logger *slog.Logger) *TagReader {
	return &TagReader{
		fs:     fsys,
		prober: prober,
		logger: logger,
	}
}

// ReadTags parses the tags of the audio file at path.
func (r *TagReader) ReadTags(ctx context.Context, path string) (*domain.TagBundle, error) {
	if path == "" {
		return nil, domain.ErrInvalidFilePath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	metadata, err := readMetadata(file)
	if err != nil {
		return nil, fmt.Errorf("read tags of %s: %w", path, err)
	}

	raw := metadata.Raw()
	bundle := &domain.TagBundle{
		Title:         strings.TrimSpace(metadata.Title()),
		OriginalTitle: rawString(raw, originalTitleKeys...),
		Artist:        strings.TrimSpace(metadata.Artist()),
		Artists:       splitArtists(metadata.Artist(), rawString(raw, artistsKeys...)),
		AlbumArtist:   strings.TrimSpace(metadata.AlbumArtist()),
		Album:         strings.TrimSpace(metadata.Album()),
		OriginalAlbum: rawString(raw, originalAlbumKeys...),
	}

	if picture := metadata.Picture(); picture != nil && len(picture.Data) > 0 {
		bundle.Picture = &domain.Picture{
			MIMEType: picture.MIMEType,
			Data:     picture.Data,
		}
	}

	bundle.Duration = r.probeDuration(file, path)
	return bundle, nil
}

// readMetadata runs the tag parser, turning a parser panic on malformed input into an error.
func readMetadata(file io.ReadSeeker) (metadata tag.Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			metadata, err = nil, fmt.Errorf("%w: %v", ErrMalformedTags, r)
		}
	}()
	return tag.ReadFrom(file)
}

// probeDuration rewinds the file and decodes it to measure its length.
// Files the prober does not understand report 0.
func (r *TagReader) probeDuration(file io.ReadSeeker, path string) float64 {
	if r.prober == nil || !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return 0
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0
	}
	seconds, err := r.prober.Probe(file)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("duration probe failed", slog.String("path", path), slog.Any("error", err))
		}
		return 0
	}
	return seconds
}

// rawString returns the first non-empty string value among keys,
// compared case-insensitively against the raw tag map.
func rawString(raw map[string]interface{}, keys ...string) string {
	for _, want := range keys {
		for k, v := range raw {
			if !strings.EqualFold(k, want) {
				continue
			}
			if s, ok := v.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// splitArtists builds the artist list. ID3v2.4 separates multiple values
// with NUL; an explicit ARTISTS tag uses NUL or ";".
func splitArtists(artist, explicit string) []string {
	source := explicit
	if source == "" {
		source = artist
	}
	if source == "" {
		return nil
	}
	parts := strings.FieldsFunc(source, func(r rune) bool { return r == 0 || r == ';' })
	artists := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			artists = append(artists, p)
		}
	}
	return artists
}

// Verify interface implementation
var _ ports.TagReader = (*TagReader)(nil)
