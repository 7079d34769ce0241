package jsonfile

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// File names of the persisted collections inside the data directory.
const (
	TracksFile    = "tracks.json"
	PlaylistsFile = "playlists.json"
	PodcastsFile  = "podcasts.json"
)

// TrackRepository implements ports.TrackRepository on tracks.json.
type TrackRepository struct {
	file *snapshotFile[domain.Track]
}

// NewTrackRepository creates a track repository rooted at dataDir.
func NewTrackRepository(fsys afero.Fs, dataDir string, logger *slog.Logger) *TrackRepository {
	return &TrackRepository{
		file: newSnapshotFile[domain.Track](fsys, filepath.Join(dataDir, TracksFile), "tracks", logger),
	}
}

// LoadAll retrieves the persisted tracks.
func (r *TrackRepository) LoadAll() ([]domain.Track, error) {
	return r.file.load()
}

// SaveAll overwrites the persisted tracks.
func (r *TrackRepository) SaveAll(tracks []domain.Track) error {
	return r.file.save(tracks)
}

// PlaylistRepository implements ports.PlaylistRepository on playlists.json.
type PlaylistRepository struct {
	file *snapshotFile[domain.Playlist]
}

// NewPlaylistRepository creates a playlist repository rooted at dataDir.
func NewPlaylistRepository(fsys afero.Fs, dataDir string, logger *slog.Logger) *PlaylistRepository {
	return &PlaylistRepository{
		file: newSnapshotFile[domain.Playlist](fsys, filepath.Join(dataDir, PlaylistsFile), "playlists", logger),
	}
}

// LoadAll retrieves the persisted playlists.
func (r *PlaylistRepository) LoadAll() ([]domain.Playlist, error) {
	playlists, err := r.file.load()
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if playlists[i].Tracks == nil {
			playlists[i].Tracks = []string{}
		}
	}
	return playlists, nil
}

// SaveAll overwrites the persisted playlists.
func (r *PlaylistRepository) SaveAll(playlists []domain.Playlist) error {
	return r.file.save(playlists)
}

// PodcastRepository implements ports.PodcastRepository on podcasts.json.
type PodcastRepository struct {
	file *snapshotFile[domain.Podcast]
}

// NewPodcastRepository creates a podcast repository rooted at dataDir.
func NewPodcastRepository(fsys afero.Fs, dataDir string, logger *slog.Logger) *PodcastRepository {
	return &PodcastRepository{
		file: newSnapshotFile[domain.Podcast](fsys, filepath.Join(dataDir, PodcastsFile), "podcasts", logger),
	}
}

// LoadAll retrieves the persisted podcasts.
func (r *PodcastRepository) LoadAll() ([]domain.Podcast, error) {
	return r.file.load()
}

// SaveAll overwrites the persisted podcasts.
func (r *PodcastRepository) SaveAll(podcasts []domain.Podcast) error {
	return r.file.save(podcasts)
}

// Verify interface implementation
var (
	_ ports.TrackRepository    = (*TrackRepository)(nil)
	_ ports.PlaylistRepository = (*PlaylistRepository)(nil)
	_ ports.PodcastRepository  = (*PodcastRepository)(nil)
)
