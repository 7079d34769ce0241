// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

// TrackRepository persists the track collection as a full snapshot.
//
// Thread-safety: Implementations must be thread-safe.
type TrackRepository interface {
	// LoadAll retrieves the persisted tracks.
	// If nothing was saved yet, returns an empty slice (not an error).
	LoadAll() ([]domain.Track, error)

	// SaveAll overwrites the persisted collection with tracks.
	// Callers are responsible for filtering out session-only tracks.
	SaveAll(tracks []domain.Track) error
}

// PlaylistRepository persists the playlist collection as a full snapshot.
//
// Thread-safety: Implementations must be thread-safe.
type PlaylistRepository interface {
	// LoadAll retrieves the persisted playlists.
	// If nothing was saved yet, returns an empty slice (not an error).
	LoadAll() ([]domain.Playlist, error)

	// SaveAll overwrites the persisted collection with playlists.
	SaveAll(playlists []domain.Playlist) error
}

// PodcastRepository persists the podcast collection, episodes nested, as a full snapshot.
//
// Thread-safety: Implementations must be thread-safe.
type PodcastRepository interface {
	// LoadAll retrieves the persisted podcasts.
	// If nothing was saved yet, returns an empty slice (not an error).
	LoadAll() ([]domain.Podcast, error)

	// SaveAll overwrites the persisted collection with podcasts.
	SaveAll(podcasts []domain.Podcast) error
}
