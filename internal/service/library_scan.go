package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

// supportedExts lists the audio extensions picked up by folder scans.
var supportedExts = []string{
	// Common formats
	".mp3", ".mp2", ".mp1",
	".ogg", ".oga", ".opus",
	".wav", ".aif", ".aiff",
	".flac", ".fla",
	".aac", ".m4a", ".m4b", ".mp4",
	".wma",
	".wv",          // WavPack
	".ape", ".mac", // APE
	".mpc", ".mp+", ".mpp", // Musepack
	".tta",
	".dsf",
	".ac3",
}

// IsFormatSupported reports whether a scan would pick up filePath.
func IsFormatSupported(filePath string) bool {
	return slices.Contains(supportedExts, strings.ToLower(filepath.Ext(filePath)))
}

// SupportedFormats returns the extensions picked up by folder scans.
func SupportedFormats() []string {
	return slices.Clone(supportedExts)
}

// ScanFolder adds every supported audio file below folderPath to the library
// and returns the resulting tracks in walk order. Files already in the
// library are returned as they are. Unreadable entries are skipped.
func (s *LibraryService) ScanFolder(ctx context.Context, fsys afero.Fs, folderPath string) ([]domain.Track, error) {
	info, err := fsys.Stat(folderPath)
	if err != nil || !info.IsDir() {
		return nil, domain.NewValidationError("folder", folderPath, "must be an existing directory", domain.ErrInvalidFilePath)
	}

	files, err := collectAudioFiles(ctx, fsys, folderPath)
	if err != nil {
		return nil, domain.NewServiceError("LibraryService", "ScanFolder", "scan interrupted", err)
	}

	sources := make([]domain.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, domain.Source{Ref: f})
	}
	tracks := s.AddTracks(ctx, sources)

	s.logger.Info("folder scanned",
		slog.String("path", folderPath),
		slog.Int("files", len(files)),
		slog.Int("tracks", len(tracks)))
	s.publish(domain.NewLibraryScannedEvent(folderPath, len(files), len(tracks)))

	if err := ctx.Err(); err != nil {
		return tracks, domain.NewServiceError("LibraryService", "ScanFolder", "scan interrupted", err)
	}
	return tracks, nil
}

// collectAudioFiles recursively collects all supported audio files in a directory.
func collectAudioFiles(ctx context.Context, fsys afero.Fs, folderPath string) ([]string, error) {
	files := make([]string, 0)

	err := afero.Walk(fsys, folderPath, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// Skip entries we can't access
		if err != nil || info.IsDir() {
			return nil
		}
		if info.Mode().IsRegular() && IsFormatSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
