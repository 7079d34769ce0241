package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
	"github.com/tejashwikalptaru/tunelib/internal/service"
)

// Result is the outcome shape of fallible bridge operations.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	// ID names the record an operation created, when there is one
	ID string `json:"id,omitempty"`
}

func success(id string) Result {
	return Result{OK: true, ID: id}
}

func failure(err error) Result {
	return Result{OK: false, Error: err.Error()}
}

// Bridge exposes the library and podcast services as request/response
// operations. No method returns an error or panics on bad input; failures
// become a degraded result or a Result with OK false.
type Bridge struct {
	logger    *slog.Logger
	fs        afero.Fs
	library   *service.LibraryService
	playlists *service.PlaylistService
	metadata  *service.MetadataService
	covers    ports.CoverResolver
	podcasts  *service.PodcastService
}

func newBridge(
	logger *slog.Logger,
	fsys afero.Fs,
	library *service.LibraryService,
	playlists *service.PlaylistService,
	metadata *service.MetadataService,
	covers ports.CoverResolver,
	podcasts *service.PodcastService,
) *Bridge {
	return &Bridge{
		logger:    logger.With(slog.String("component", "bridge")),
		fs:        fsys,
		library:   library,
		playlists: playlists,
		metadata:  metadata,
		covers:    covers,
		podcasts:  podcasts,
	}
}

// LoadTracks reloads the track collection from disk. It is empty when nothing was saved.
func (b *Bridge) LoadTracks(ctx context.Context) []domain.Track {
	return b.library.Load(ctx)
}

// Tracks returns the in-memory track collection.
func (b *Bridge) Tracks() []domain.Track {
	return b.library.Tracks()
}

// SaveTracks replaces the track collection. Only durable tracks reach disk.
func (b *Bridge) SaveTracks(ctx context.Context, tracks []domain.Track) {
	b.library.ReplaceAll(ctx, tracks)
}

// ExtractMetadata reads display metadata for a file, falling back to defaults.
func (b *Bridge) ExtractMetadata(ctx context.Context, path string) domain.TrackMetadata {
	return b.metadata.Extract(ctx, path)
}

// ResolveCoverPath returns the cache reference of a file's cover, or nil.
func (b *Bridge) ResolveCoverPath(ctx context.Context, path string) *string {
	ref, found := b.covers.Resolve(ctx, path)
	if !found {
		return nil
	}
	return ref
}

// AddTracks adds local files to the library and returns the resulting tracks.
// Files that cannot be added are skipped.
func (b *Bridge) AddTracks(ctx context.Context, paths []string) []domain.Track {
	sources := make([]domain.Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, domain.Source{Ref: p})
	}
	return b.library.AddTracks(ctx, sources)
}

// ScanFolder adds every supported audio file below dir and returns the
// resulting tracks. It is empty when dir cannot be scanned.
func (b *Bridge) ScanFolder(ctx context.Context, dir string) []domain.Track {
	tracks, err := b.library.ScanFolder(ctx, b.fs, dir)
	if err != nil {
		b.logger.Warn("folder scan failed", slog.String("path", dir), slog.Any("error", err))
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks
}

// RemoveTrack removes a track from the library and from every playlist.
func (b *Bridge) RemoveTrack(ctx context.Context, id string) Result {
	if err := b.library.RemoveTrack(ctx, id); err != nil {
		return failure(err)
	}
	return success(id)
}

// Playlists returns every playlist.
func (b *Bridge) Playlists() []domain.Playlist {
	return b.playlists.All()
}

// CreatePlaylist creates an empty playlist; the new id is in Result.ID.
func (b *Bridge) CreatePlaylist(ctx context.Context, name string) Result {
	p, err := b.playlists.Create(ctx, name)
	if err != nil {
		return failure(err)
	}
	return success(p.ID)
}

// DeletePlaylist deletes a playlist. Its tracks stay in the library.
func (b *Bridge) DeletePlaylist(ctx context.Context, id string) Result {
	if err := b.playlists.Delete(ctx, id); err != nil {
		return failure(err)
	}
	return success(id)
}

// AddToPlaylist appends a library track to a playlist.
func (b *Bridge) AddToPlaylist(ctx context.Context, playlistID, trackID string) Result {
	if _, err := b.library.Track(trackID); err != nil {
		return failure(err)
	}
	if err := b.playlists.AddTrack(ctx, playlistID, trackID); err != nil {
		return failure(err)
	}
	return success(playlistID)
}

// RemoveFromPlaylist drops a track from one playlist.
func (b *Bridge) RemoveFromPlaylist(ctx context.Context, playlistID, trackID string) Result {
	if err := b.playlists.RemoveTrack(ctx, playlistID, trackID); err != nil {
		return failure(err)
	}
	return success(playlistID)
}

// ListPodcasts returns every subscribed podcast.
func (b *Bridge) ListPodcasts(ctx context.Context) []domain.Podcast {
	return b.podcasts.List(ctx)
}

// AddPodcastByURL subscribes to a feed; the podcast id is in Result.ID.
func (b *Bridge) AddPodcastByURL(ctx context.Context, feedURL string) Result {
	p, err := b.podcasts.AddByURL(ctx, feedURL)
	if err != nil {
		b.logger.Warn("failed to add podcast", slog.String("feed_url", feedURL), slog.Any("error", err))
		return failure(err)
	}
	return success(p.ID)
}

// RefreshAllPodcasts refreshes every feed. The result is OK unless every
// feed failed; Error lists how many failed either way.
func (b *Bridge) RefreshAllPodcasts(ctx context.Context) Result {
	report := b.podcasts.RefreshAll(ctx)
	if len(report.Failed) == 0 {
		return Result{OK: true}
	}

	total := len(report.Failed) + len(report.Updated)
	return Result{
		OK:    len(report.Updated) > 0,
		Error: fmt.Sprintf("%d of %d podcasts failed to refresh", len(report.Failed), total),
	}
}

// RemovePodcast unsubscribes a podcast.
func (b *Bridge) RemovePodcast(ctx context.Context, id string) Result {
	if err := b.podcasts.Remove(ctx, id); err != nil {
		return failure(err)
	}
	return success(id)
}

// SetEpisodeFile records the local file an episode was downloaded to.
// An empty path clears it.
func (b *Bridge) SetEpisodeFile(ctx context.Context, podcastID, episodeID, path string) Result {
	if err := b.podcasts.SetEpisodeFile(ctx, podcastID, episodeID, path); err != nil {
		return failure(err)
	}
	return success(episodeID)
}

// UpdateEpisodeProgress records playback progress for an episode.
func (b *Bridge) UpdateEpisodeProgress(ctx context.Context, podcastID, episodeID string, seconds float64, played bool) Result {
	if err := b.podcasts.UpdateProgress(ctx, podcastID, episodeID, seconds, played); err != nil {
		return failure(err)
	}
	return success(episodeID)
}
