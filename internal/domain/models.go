// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the tunelib media library.
package domain

import (
	"io"
	"strings"
	"time"
)

// Track represents a single audio file in the library.
// This is the record persisted in the track collection.
type Track struct {
	// ID is a process-unique identifier (UUID), generated once at creation
	ID string `json:"id"`

	// Name is the display title (from metadata or filename)
	Name string `json:"name"`

	// Artist is the performing artist name
	Artist string `json:"artist"`

	// Album is the album name
	Album string `json:"album"`

	// Duration is the track length in seconds; 0 means unknown or live
	Duration float64 `json:"duration"`

	// Path is either an absolute local path or a transient reference (blob:, data:, http:)
	Path string `json:"path"`

	// Cover is a cached thumbnail reference or an inline data URI.
	// nil means "not yet resolved", not "known absent".
	Cover *string `json:"cover"`
}

// IsDurable returns true if the track refers to a local file that survives restarts.
func (t Track) IsDurable() bool {
	return !IsTransientRef(t.Path)
}

// IsTransientRef reports whether ref is a session-only reference
// rather than a local filesystem path.
func IsTransientRef(ref string) bool {
	if ref == "" {
		return true
	}
	l := strings.ToLower(ref)
	return strings.HasPrefix(l, "blob:") ||
		strings.HasPrefix(l, "data:") ||
		strings.HasPrefix(l, "http")
}

// Source describes something a user wants to add to the library.
type Source struct {
	// Ref is an absolute file path or a transient reference
	Ref string

	// Name is the original file name, used for the display title of transient sources
	Name string

	// Content optionally carries the media bytes of a transient source for duration probing
	Content io.Reader
}

// TrackMetadata is the normalized result of metadata extraction.
// Every string field is non-empty once produced by the extractor.
type TrackMetadata struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration float64 `json:"duration"`
	Cover    *string `json:"cover"`
}

// Default metadata values used when tags are missing or unreadable.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Picture is an embedded image found in an audio file's tags.
type Picture struct {
	// MIMEType as declared by the tag (may be empty or not an image type)
	MIMEType string

	// Data is the raw image payload
	Data []byte
}

// TagBundle is the raw tag information read from an audio file.
// Fields are empty when the tag does not carry them.
type TagBundle struct {
	Title         string
	OriginalTitle string
	Artist        string
	Artists       []string
	AlbumArtist   string
	Album         string
	OriginalAlbum string

	// Duration in seconds, 0 if the container does not report one
	Duration float64

	Picture *Picture
}

// Playlist is an ordered, non-owning list of track ids.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tracks    []string  `json:"tracks"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contains reports whether the playlist references trackID.
func (p Playlist) Contains(trackID string) bool {
	for _, id := range p.Tracks {
		if id == trackID {
			return true
		}
	}
	return false
}

// Podcast is a subscribed syndication feed with its episodes.
type Podcast struct {
	// ID is the hash of the feed's canonical URL
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	ImagePath   *string `json:"imagePath"`
	FeedURL     string  `json:"feedUrl"`

	// LastUpdated is a unix timestamp in milliseconds
	LastUpdated int64     `json:"lastUpdated"`
	Episodes    []Episode `json:"episodes"`
}

// Episode is one item of a podcast feed plus the local playback state.
type Episode struct {
	// ID is the hash of the item identity combined with the feed URL
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	AudioURL        string  `json:"audioUrl"`
	PubDate         *string `json:"pubDate"`
	Duration        float64 `json:"duration"`
	DescriptionHTML string  `json:"descriptionHtml"`
	ImagePath       *string `json:"imagePath"`
	ImageURL        string  `json:"imageUrl,omitempty"`

	// Mutable local state, preserved across feed refreshes
	PlayedSeconds float64 `json:"playedSeconds"`
	IsPlayed      bool    `json:"isPlayed"`
	FilePath      *string `json:"filePath"`
}

// Feed is a parsed syndication feed before identity derivation.
type Feed struct {
	Title       string
	Author      string
	Description string
	ImageURL    string

	// FeedURL is the canonical URL the feed declares for itself (may be empty)
	FeedURL string

	Items []FeedItem
}

// FeedItem is a single entry of a parsed feed.
type FeedItem struct {
	GUID            string
	ID              string
	Link            string
	Title           string
	AudioURL        string
	PubDate         *time.Time
	Duration        string
	DescriptionHTML string
	ImageURL        string
}

// Identity returns the per-item identity used for episode ids:
// guid, else id, else link, else title.
func (i FeedItem) Identity() string {
	for _, v := range []string{i.GUID, i.ID, i.Link, i.Title} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
