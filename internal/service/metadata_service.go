// Package service provides business logic for the tunelib media library.
package service

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/tejashwikalptaru/tunelib/internal/artwork"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// MetadataService extracts normalized descriptive metadata from audio files.
// Extraction never fails: unreadable files produce a defaulted record.
type MetadataService struct {
	logger *slog.Logger
	tags   ports.TagReader
	prober ports.DurationProber
}

// NewMetadataService creates a new metadata service. prober may be nil.
func NewMetadataService(logger *slog.Logger, tags ports.TagReader, prober ports.DurationProber) *MetadataService {
	return &MetadataService{
		logger: logger.With(slog.String("service", "MetadataService")),
		tags:   tags,
		prober: prober,
	}
}

// Extract returns the metadata of the file at filePath.
func (s *MetadataService) Extract(ctx context.Context, filePath string) domain.TrackMetadata {
	if filePath == "" {
		return DefaultMetadata("")
	}

	bundle, err := s.tags.ReadTags(ctx, filePath)
	if err != nil {
		s.logger.Warn("metadata extraction failed, using defaults",
			slog.String("path", filePath),
			slog.Any("error", err))
		return DefaultMetadata(TitleFromName(filePath))
	}

	meta := domain.TrackMetadata{
		Title:    firstNonEmpty(bundle.Title, bundle.OriginalTitle, TitleFromName(filePath), domain.UnknownTitle),
		Artist:   firstNonEmpty(bundle.Artist, firstOf(bundle.Artists), bundle.AlbumArtist, domain.UnknownArtist),
		Album:    firstNonEmpty(bundle.Album, bundle.OriginalAlbum, domain.UnknownAlbum),
		Duration: bundle.Duration,
	}
	if meta.Duration < 0 {
		meta.Duration = 0
	}
	if bundle.Picture != nil && len(bundle.Picture.Data) > 0 {
		uri := DataURI(bundle.Picture.MIMEType, bundle.Picture.Data)
		meta.Cover = &uri
	}
	return meta
}

// EmbeddedPicture returns the raw picture embedded in the file's tags.
func (s *MetadataService) EmbeddedPicture(ctx context.Context, filePath string) ([]byte, bool) {
	if filePath == "" {
		return nil, false
	}
	bundle, err := s.tags.ReadTags(ctx, filePath)
	if err != nil || bundle.Picture == nil || len(bundle.Picture.Data) == 0 {
		return nil, false
	}
	return bundle.Picture.Data, true
}

// ProbeDuration decodes r and returns its duration in seconds, or 0.
func (s *MetadataService) ProbeDuration(r io.Reader) float64 {
	if s.prober == nil || r == nil {
		return 0
	}
	seconds, err := s.prober.Probe(r)
	if err != nil {
		s.logger.Debug("duration probe failed", slog.Any("error", err))
		return 0
	}
	return seconds
}

// DefaultMetadata is the record produced when tags are unavailable.
func DefaultMetadata(title string) domain.TrackMetadata {
	if title == "" {
		title = domain.UnknownTitle
	}
	return domain.TrackMetadata{
		Title:  title,
		Artist: domain.UnknownArtist,
		Album:  domain.UnknownAlbum,
	}
}

// TitleFromName returns the base name of a path or file name without its extension.
// Both slash styles are accepted.
func TitleFromName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.IndexAny(name, "?#"); i >= 0 && strings.Contains(name, "://") {
		name = name[:i]
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSpace(base)
}

// DataURI encodes data as an inline data: reference.
// A declared image/* MIME type wins, otherwise the type is sniffed.
func DataURI(mimeType string, data []byte) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = artwork.SniffMIME(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
