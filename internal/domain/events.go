// Package domain defines events for the event-driven architecture.
// Services publish state changes through the event bus so the presentation layer can refresh.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Library events
	EventLibraryLoaded      EventType = "library.loaded"
	EventTrackAdded         EventType = "track.added"
	EventTrackRemoved       EventType = "track.removed"
	EventTrackCoverResolved EventType = "track.cover_resolved"
	EventLibraryScanned     EventType = "library.scanned"

	// Playlist events
	EventPlaylistUpdated EventType = "playlist.updated"

	// Playback events
	EventPlaybackStopped EventType = "playback.stopped"

	// Podcast events
	EventPodcastUpdated          EventType = "podcast.updated"
	EventPodcastRemoved          EventType = "podcast.removed"
	EventPodcastRefreshFailed    EventType = "podcast.refresh_failed"
	EventPodcastRefreshCompleted EventType = "podcast.refresh_completed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// LibraryLoadedEvent is published after the persisted track collection was loaded.
type LibraryLoadedEvent struct {
	baseEvent
	Count int
}

// Type returns the event type.
func (e LibraryLoadedEvent) Type() EventType {
	return EventLibraryLoaded
}

// NewLibraryLoadedEvent creates a new LibraryLoadedEvent.
func NewLibraryLoadedEvent(count int) LibraryLoadedEvent {
	return LibraryLoadedEvent{
		baseEvent: newBaseEvent(),
		Count:     count,
	}
}

// LibraryScannedEvent is published after a folder scan finished.
type LibraryScannedEvent struct {
	baseEvent
	Path  string
	Files int // audio files found
	Added int // tracks in the library for those files
}

// Type returns the event type.
func (e LibraryScannedEvent) Type() EventType {
	return EventLibraryScanned
}

// NewLibraryScannedEvent creates a new LibraryScannedEvent.
func NewLibraryScannedEvent(path string, files, added int) LibraryScannedEvent {
	return LibraryScannedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
		Files:     files,
		Added:     added,
	}
}

// TrackAddedEvent is published when a track is inserted into the library.
type TrackAddedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackAddedEvent) Type() EventType {
	return EventTrackAdded
}

// NewTrackAddedEvent creates a new TrackAddedEvent.
func NewTrackAddedEvent(track Track) TrackAddedEvent {
	return TrackAddedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackRemovedEvent is published when a track leaves the library.
type TrackRemovedEvent struct {
	baseEvent
	TrackID string
}

// Type returns the event type.
func (e TrackRemovedEvent) Type() EventType {
	return EventTrackRemoved
}

// NewTrackRemovedEvent creates a new TrackRemovedEvent.
func NewTrackRemovedEvent(trackID string) TrackRemovedEvent {
	return TrackRemovedEvent{
		baseEvent: newBaseEvent(),
		TrackID:   trackID,
	}
}

// TrackCoverResolvedEvent is published when the background backfill found a cover.
type TrackCoverResolvedEvent struct {
	baseEvent
	TrackID string
	Cover   string
}

// Type returns the event type.
func (e TrackCoverResolvedEvent) Type() EventType {
	return EventTrackCoverResolved
}

// NewTrackCoverResolvedEvent creates a new TrackCoverResolvedEvent.
func NewTrackCoverResolvedEvent(trackID, cover string) TrackCoverResolvedEvent {
	return TrackCoverResolvedEvent{
		baseEvent: newBaseEvent(),
		TrackID:   trackID,
		Cover:     cover,
	}
}

// PlaylistUpdatedEvent is published whenever the playlist collection changes.
type PlaylistUpdatedEvent struct {
	baseEvent
	Playlists []Playlist
}

// Type returns the event type.
func (e PlaylistUpdatedEvent) Type() EventType {
	return EventPlaylistUpdated
}

// NewPlaylistUpdatedEvent creates a new PlaylistUpdatedEvent.
func NewPlaylistUpdatedEvent(playlists []Playlist) PlaylistUpdatedEvent {
	return PlaylistUpdatedEvent{
		baseEvent: newBaseEvent(),
		Playlists: playlists,
	}
}

// PlaybackStoppedEvent is published when playback stops and the active track is cleared.
type PlaybackStoppedEvent struct {
	baseEvent
	TrackID string
}

// Type returns the event type.
func (e PlaybackStoppedEvent) Type() EventType {
	return EventPlaybackStopped
}

// NewPlaybackStoppedEvent creates a new PlaybackStoppedEvent.
func NewPlaybackStoppedEvent(trackID string) PlaybackStoppedEvent {
	return PlaybackStoppedEvent{
		baseEvent: newBaseEvent(),
		TrackID:   trackID,
	}
}

// PodcastUpdatedEvent is published when a podcast was added or merged.
type PodcastUpdatedEvent struct {
	baseEvent
	PodcastID string
	Title     string
	Episodes  int
}

// Type returns the event type.
func (e PodcastUpdatedEvent) Type() EventType {
	return EventPodcastUpdated
}

// NewPodcastUpdatedEvent creates a new PodcastUpdatedEvent.
func NewPodcastUpdatedEvent(podcast Podcast) PodcastUpdatedEvent {
	return PodcastUpdatedEvent{
		baseEvent: newBaseEvent(),
		PodcastID: podcast.ID,
		Title:     podcast.Title,
		Episodes:  len(podcast.Episodes),
	}
}

// PodcastRemovedEvent is published when a podcast subscription is removed.
type PodcastRemovedEvent struct {
	baseEvent
	PodcastID string
}

// Type returns the event type.
func (e PodcastRemovedEvent) Type() EventType {
	return EventPodcastRemoved
}

// NewPodcastRemovedEvent creates a new PodcastRemovedEvent.
func NewPodcastRemovedEvent(podcastID string) PodcastRemovedEvent {
	return PodcastRemovedEvent{
		baseEvent: newBaseEvent(),
		PodcastID: podcastID,
	}
}

// PodcastRefreshFailedEvent is published when a single feed could not be refreshed.
type PodcastRefreshFailedEvent struct {
	baseEvent
	PodcastID string
	FeedURL   string
	Err       error
}

// Type returns the event type.
func (e PodcastRefreshFailedEvent) Type() EventType {
	return EventPodcastRefreshFailed
}

// NewPodcastRefreshFailedEvent creates a new PodcastRefreshFailedEvent.
func NewPodcastRefreshFailedEvent(podcastID, feedURL string, err error) PodcastRefreshFailedEvent {
	return PodcastRefreshFailedEvent{
		baseEvent: newBaseEvent(),
		PodcastID: podcastID,
		FeedURL:   feedURL,
		Err:       err,
	}
}

// PodcastRefreshCompletedEvent is published after a full refresh pass.
type PodcastRefreshCompletedEvent struct {
	baseEvent
	Updated int
	Failed  int
}

// Type returns the event type.
func (e PodcastRefreshCompletedEvent) Type() EventType {
	return EventPodcastRefreshCompleted
}

// NewPodcastRefreshCompletedEvent creates a new PodcastRefreshCompletedEvent.
func NewPodcastRefreshCompletedEvent(updated, failed int) PodcastRefreshCompletedEvent {
	return PodcastRefreshCompletedEvent{
		baseEvent: newBaseEvent(),
		Updated:   updated,
		Failed:    failed,
	}
}
