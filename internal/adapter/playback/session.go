// Package playback holds the now-playing state shared by the library and the presentation layer.
// Audio output itself is out of scope; Session only tracks which track is active.
package playback

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// Session is an in-memory implementation of ports.Playback.
//
// Thread-safety: This implementation is thread-safe.
type Session struct {
	bus    ports.EventBus
	logger *slog.Logger

	trackID string
	mu      sync.RWMutex
}

// NewSession creates an idle session. bus may be nil.
func NewSession(bus ports.EventBus, logger *slog.Logger) *Session {
	return &Session{bus: bus, logger: logger}
}

// Play makes trackID the active track.
func (s *Session) Play(trackID string) error {
	if trackID == "" {
		return domain.ErrInvalidID
	}
	s.mu.Lock()
	s.trackID = trackID
	s.mu.Unlock()
	return nil
}

// Stop halts playback and clears the active track.
func (s *Session) Stop() error {
	s.mu.Lock()
	stopped := s.trackID
	s.trackID = ""
	s.mu.Unlock()

	if stopped == "" {
		return nil
	}
	if s.logger != nil {
		s.logger.Debug("playback stopped", slog.String("track_id", stopped))
	}
	if s.bus != nil {
		s.bus.Publish(domain.NewPlaybackStoppedEvent(stopped))
	}
	return nil
}

// CurrentTrackID returns the active track id, or "" when idle.
func (s *Session) CurrentTrackID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trackID
}

// Verify interface implementation
var _ ports.Playback = (*Session)(nil)
