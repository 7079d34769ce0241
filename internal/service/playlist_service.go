package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// PlaylistService owns the playlist collection.
// Playlists reference tracks by id and never own them.
// All mutations are serialized and persist the full collection.
type PlaylistService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PlaylistRepository
	bus        ports.EventBus

	// State
	playlists []domain.Playlist
	now       func() time.Time

	// Concurrency control
	mu sync.Mutex
}

// NewPlaylistService creates a new playlist service with an empty collection.
// Call Load to read the persisted playlists.
func NewPlaylistService(logger *slog.Logger, repository ports.PlaylistRepository, bus ports.EventBus) *PlaylistService {
	return &PlaylistService{
		logger:     logger.With(slog.String("service", "PlaylistService")),
		repository: repository,
		bus:        bus,
		playlists:  make([]domain.Playlist, 0),
		now:        time.Now,
	}
}

// Load replaces the in-memory collection with the persisted one.
// A missing or unreadable file yields an empty collection.
func (s *PlaylistService) Load(_ context.Context) []domain.Playlist {
	loaded, err := s.repository.LoadAll()
	if err != nil {
		s.logger.Warn("failed to load playlists", slog.Any("error", err))
		loaded = nil
	}

	s.mu.Lock()
	seen := make(map[string]bool, len(loaded))
	s.playlists = make([]domain.Playlist, 0, len(loaded))
	for _, p := range loaded {
		if p.ID == "" || seen[p.ID] {
			p.ID = uuid.NewString()
		}
		seen[p.ID] = true
		s.playlists = append(s.playlists, p)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return snapshot
}

// All returns a copy of every playlist in creation order.
func (s *PlaylistService) All() []domain.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Playlist returns the playlist with the given id.
func (s *PlaylistService) Playlist(id string) (domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Playlist{}, domain.ErrPlaylistNotFound
	}
	return clonePlaylist(s.playlists[i]), nil
}

// Create adds a new empty playlist.
func (s *PlaylistService) Create(_ context.Context, name string) (domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Playlist{}, domain.NewValidationError("name", name, "playlist name must not be empty", domain.ErrInvalidID)
	}

	playlist := domain.Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		Tracks:    []string{},
		CreatedAt: s.now(),
	}

	err := s.mutate(func() (bool, error) {
		s.playlists = append(s.playlists, playlist)
		return true, nil
	})
	return clonePlaylist(playlist), err
}

// Delete removes a playlist. The referenced tracks are untouched.
func (s *PlaylistService) Delete(_ context.Context, id string) error {
	return s.mutate(func() (bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return false, domain.ErrPlaylistNotFound
		}
		s.playlists = append(s.playlists[:i:i], s.playlists[i+1:]...)
		return true, nil
	})
}

// AddTrack appends trackID to a playlist. Adding a track already present is a no-op.
func (s *PlaylistService) AddTrack(_ context.Context, playlistID, trackID string) error {
	if trackID == "" {
		return domain.NewValidationError("trackId", trackID, "track id must not be empty", domain.ErrInvalidID)
	}

	return s.mutate(func() (bool, error) {
		i := s.indexLocked(playlistID)
		if i < 0 {
			return false, domain.ErrPlaylistNotFound
		}
		if s.playlists[i].Contains(trackID) {
			return false, nil
		}
		s.playlists[i].Tracks = append(s.playlists[i].Tracks, trackID)
		return true, nil
	})
}

// RemoveTrack removes trackID from one playlist.
func (s *PlaylistService) RemoveTrack(_ context.Context, playlistID, trackID string) error {
	return s.mutate(func() (bool, error) {
		i := s.indexLocked(playlistID)
		if i < 0 {
			return false, domain.ErrPlaylistNotFound
		}
		filtered, changed := without(s.playlists[i].Tracks, trackID)
		s.playlists[i].Tracks = filtered
		return changed, nil
	})
}

// RemoveTrackEverywhere removes trackID from every playlist and returns how many changed.
func (s *PlaylistService) RemoveTrackEverywhere(_ context.Context, trackID string) int {
	changed := 0
	_ = s.mutate(func() (bool, error) {
		for i := range s.playlists {
			if filtered, ok := without(s.playlists[i].Tracks, trackID); ok {
				s.playlists[i].Tracks = filtered
				changed++
			}
		}
		return changed > 0, nil
	})
	return changed
}

// mutate runs fn under the lock. When fn reports a change the collection is
// persisted before the lock is released and subscribers are notified after.
// Persistence failures are logged; the in-memory state stays authoritative.
func (s *PlaylistService) mutate(fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	var snapshot []domain.Playlist
	if changed {
		snapshot = s.snapshotLocked()
		if saveErr := s.repository.SaveAll(snapshot); saveErr != nil {
			s.logger.Warn("failed to persist playlists", slog.Any("error", saveErr))
		}
	}
	s.mu.Unlock()

	if changed && s.bus != nil {
		s.bus.Publish(domain.NewPlaylistUpdatedEvent(snapshot))
	}
	return err
}

func (s *PlaylistService) indexLocked(id string) int {
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PlaylistService) snapshotLocked() []domain.Playlist {
	out := make([]domain.Playlist, len(s.playlists))
	for i, p := range s.playlists {
		out[i] = clonePlaylist(p)
	}
	return out
}

func clonePlaylist(p domain.Playlist) domain.Playlist {
	tracks := make([]string, len(p.Tracks))
	copy(tracks, p.Tracks)
	p.Tracks = tracks
	return p
}

// without returns ids minus every occurrence of id, and whether anything was removed.
func without(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out, len(out) != len(ids)
}
