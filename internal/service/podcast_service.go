package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// RefreshReport summarizes a RefreshAll pass by podcast id.
type RefreshReport struct {
	Updated []string
	Failed  []string
}

// PodcastService subscribes to feeds and keeps their episodes merged with local playback state.
//
// The collection is owned by the service: every mutation happens under one
// mutex against the current in-memory state and ends with a full snapshot
// save. Network and parsing work runs outside the lock.
type PodcastService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PodcastRepository
	fetcher    ports.Fetcher
	parser     ports.FeedParser
	artwork    ports.ArtworkCache
	bus        ports.EventBus

	// State
	podcasts []domain.Podcast
	loaded   bool
	now      func() time.Time

	// Concurrency control
	mu sync.Mutex
}

// NewPodcastService creates a new podcast service. artwork and bus may be nil.
func NewPodcastService(
	logger *slog.Logger,
	repository ports.PodcastRepository,
	fetcher ports.Fetcher,
	parser ports.FeedParser,
	artwork ports.ArtworkCache,
	bus ports.EventBus,
) *PodcastService {
	return &PodcastService{
		logger:     logger.With(slog.String("service", "PodcastService")),
		repository: repository,
		fetcher:    fetcher,
		parser:     parser,
		artwork:    artwork,
		bus:        bus,
		podcasts:   make([]domain.Podcast, 0),
		now:        time.Now,
	}
}

// Load replaces the in-memory collection with the persisted one.
func (s *PodcastService) Load(_ context.Context) []domain.Podcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked()
	return clonePodcasts(s.podcasts)
}

// List returns every subscribed podcast.
func (s *PodcastService) List(_ context.Context) []domain.Podcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	return clonePodcasts(s.podcasts)
}

// Podcast returns one podcast by id.
func (s *PodcastService) Podcast(_ context.Context, id string) (domain.Podcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	if i := s.indexLocked(id); i >= 0 {
		return clonePodcast(s.podcasts[i]), nil
	}
	return domain.Podcast{}, domain.ErrPodcastNotFound
}

// AddByURL subscribes to the feed at feedURL, or merges it into the
// existing subscription with the same canonical URL.
func (s *PodcastService) AddByURL(ctx context.Context, feedURL string) (domain.Podcast, error) {
	feedURL, err := ValidateFeedURL(feedURL)
	if err != nil {
		return domain.Podcast{}, err
	}

	fresh, err := s.ingest(ctx, feedURL, "")
	if err != nil {
		return domain.Podcast{}, domain.NewServiceError("PodcastService", "AddByURL", "failed to ingest feed", err)
	}

	s.mu.Lock()
	s.ensureLoadedLocked()
	result := fresh
	if i := s.indexLocked(fresh.ID); i >= 0 {
		result = mergePodcast(s.podcasts[i], fresh)
		s.podcasts[i] = result
	} else {
		s.podcasts = append(s.podcasts, fresh)
	}
	s.persistLocked()
	result = clonePodcast(result)
	s.mu.Unlock()

	s.logger.Info("podcast added",
		slog.String("podcast_id", result.ID),
		slog.String("title", result.Title),
		slog.Int("episodes", len(result.Episodes)))
	s.publish(domain.NewPodcastUpdatedEvent(result))
	return result, nil
}

// RefreshAll re-fetches every subscribed feed, one at a time.
// A failing feed is logged and skipped; its stored state is untouched.
// Results are merged into the collection as it is when the pass ends, so
// podcasts removed during the pass are not resurrected. The collection is
// persisted once.
func (s *PodcastService) RefreshAll(ctx context.Context) RefreshReport {
	type target struct{ id, feedURL string }

	s.mu.Lock()
	s.ensureLoadedLocked()
	targets := make([]target, 0, len(s.podcasts))
	for _, p := range s.podcasts {
		targets = append(targets, target{id: p.ID, feedURL: p.FeedURL})
	}
	s.mu.Unlock()

	report := RefreshReport{Updated: []string{}, Failed: []string{}}
	fresh := make(map[string]domain.Podcast, len(targets))

	for _, t := range targets {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, t.id)
			continue
		}

		p, err := s.ingest(ctx, t.feedURL, t.id)
		if err != nil {
			s.logger.Warn("podcast refresh failed",
				slog.String("podcast_id", t.id),
				slog.String("feed_url", t.feedURL),
				slog.Any("error", err))
			report.Failed = append(report.Failed, t.id)
			s.publish(domain.NewPodcastRefreshFailedEvent(t.id, t.feedURL, err))
			continue
		}
		fresh[t.id] = p
	}

	updated := make([]domain.Podcast, 0, len(fresh))
	s.mu.Lock()
	for _, t := range targets {
		p, ok := fresh[t.id]
		if !ok {
			continue
		}
		i := s.indexLocked(t.id)
		if i < 0 {
			continue
		}
		s.podcasts[i] = mergePodcast(s.podcasts[i], p)
		updated = append(updated, clonePodcast(s.podcasts[i]))
		report.Updated = append(report.Updated, t.id)
	}
	if len(updated) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	for _, p := range updated {
		s.publish(domain.NewPodcastUpdatedEvent(p))
	}
	s.publish(domain.NewPodcastRefreshCompletedEvent(len(report.Updated), len(report.Failed)))
	s.logger.Info("podcast refresh completed",
		slog.Int("updated", len(report.Updated)),
		slog.Int("failed", len(report.Failed)))
	return report
}

// Remove unsubscribes a podcast. Cached artwork is left in place.
func (s *PodcastService) Remove(_ context.Context, id string) error {
	if id == "" {
		return domain.NewValidationError("id", id, "podcast id must not be empty", domain.ErrInvalidID)
	}

	s.mu.Lock()
	s.ensureLoadedLocked()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrPodcastNotFound
	}
	s.podcasts = append(s.podcasts[:i:i], s.podcasts[i+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	s.publish(domain.NewPodcastRemovedEvent(id))
	return nil
}

// UpdateProgress records the playback position of an episode.
func (s *PodcastService) UpdateProgress(_ context.Context, podcastID, episodeID string, seconds float64, played bool) error {
	if seconds < 0 {
		return domain.NewValidationError("playedSeconds", seconds, "must not be negative", domain.ErrInvalidID)
	}
	return s.updateEpisode(podcastID, episodeID, func(ep *domain.Episode) {
		ep.PlayedSeconds = seconds
		ep.IsPlayed = played
	})
}

// SetEpisodeFile records where an episode was downloaded. An empty path clears it.
func (s *PodcastService) SetEpisodeFile(_ context.Context, podcastID, episodeID, path string) error {
	return s.updateEpisode(podcastID, episodeID, func(ep *domain.Episode) {
		ep.FilePath = domain.StringPtr(strings.TrimSpace(path))
	})
}

func (s *PodcastService) updateEpisode(podcastID, episodeID string, apply func(*domain.Episode)) error {
	s.mu.Lock()
	s.ensureLoadedLocked()

	i := s.indexLocked(podcastID)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrPodcastNotFound
	}
	episodes := s.podcasts[i].Episodes
	j := -1
	for k := range episodes {
		if episodes[k].ID == episodeID {
			j = k
			break
		}
	}
	if j < 0 {
		s.mu.Unlock()
		return domain.ErrEpisodeNotFound
	}

	apply(&episodes[j])
	s.persistLocked()
	snapshot := clonePodcast(s.podcasts[i])
	s.mu.Unlock()

	s.publish(domain.NewPodcastUpdatedEvent(snapshot))
	return nil
}

// ingest fetches and parses a feed into a podcast record with default local state.
// identity overrides the derived podcast id; refreshes pass the stored id
// so a feed that changes its self link keeps its subscription.
func (s *PodcastService) ingest(ctx context.Context, feedURL, identity string) (domain.Podcast, error) {
	data, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return domain.Podcast{}, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := s.parser.Parse(data)
	if err != nil {
		return domain.Podcast{}, fmt.Errorf("parse feed: %w", err)
	}

	canonical := feedURL
	if identity == "" {
		if self, err := ValidateFeedURL(feed.FeedURL); err == nil {
			canonical = self
		}
	}

	podcast := domain.Podcast{
		ID:          podcastID(canonical),
		Title:       strings.TrimSpace(feed.Title),
		Author:      strings.TrimSpace(feed.Author),
		Description: strings.TrimSpace(feed.Description),
		FeedURL:     canonical,
		LastUpdated: s.now().UnixMilli(),
	}
	if identity != "" {
		podcast.ID = identity
	}

	images := newImageMemo(ctx, s)
	podcast.ImagePath = images.cache(feed.ImageURL)

	seen := make(map[string]bool, len(feed.Items))
	podcast.Episodes = make([]domain.Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		key := item.Identity()
		if key == "" {
			s.logger.Debug("skipping feed item without identity", slog.String("feed_url", feedURL))
			continue
		}
		id := episodeID(canonical, key)
		if seen[id] {
			continue
		}
		seen[id] = true

		ep := domain.Episode{
			ID:              id,
			Title:           item.Title,
			AudioURL:        item.AudioURL,
			Duration:        parseDuration(item.Duration),
			DescriptionHTML: item.DescriptionHTML,
			ImageURL:        item.ImageURL,
			ImagePath:       cloneStringPtr(podcast.ImagePath),
		}
		if ep.Title == "" {
			ep.Title = key
		}
		if item.PubDate != nil {
			ep.PubDate = domain.StringPtr(item.PubDate.UTC().Format(time.RFC3339))
		}
		if item.ImageURL != "" && item.ImageURL != feed.ImageURL {
			if ref := images.cache(item.ImageURL); ref != nil {
				ep.ImagePath = ref
			}
		}
		podcast.Episodes = append(podcast.Episodes, ep)
	}
	return podcast, nil
}

// imageMemo downloads and caches artwork once per URL within one ingestion.
type imageMemo struct {
	ctx     context.Context
	service *PodcastService
	refs    map[string]*string
}

func newImageMemo(ctx context.Context, s *PodcastService) *imageMemo {
	return &imageMemo{ctx: ctx, service: s, refs: make(map[string]*string)}
}

// cache returns the reference for rawURL, or nil when it could not be fetched or stored.
func (m *imageMemo) cache(rawURL string) *string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || m.service.artwork == nil {
		return nil
	}
	if ref, ok := m.refs[rawURL]; ok {
		return cloneStringPtr(ref)
	}

	var ref *string
	data, err := m.service.fetcher.Fetch(m.ctx, rawURL)
	if err == nil {
		var cached string
		cached, err = m.service.artwork.CacheBytes(data)
		if err == nil {
			ref = &cached
		}
	}
	if err != nil {
		m.service.logger.Debug("artwork unavailable", slog.String("url", rawURL), slog.Any("error", err))
	}
	m.refs[rawURL] = ref
	return cloneStringPtr(ref)
}

// ValidateFeedURL checks that raw is an absolute http or https URL and returns it trimmed.
func ValidateFeedURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", domain.NewValidationError("feedUrl", raw, "must not be empty", domain.ErrInvalidFeedURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", domain.NewValidationError("feedUrl", raw, err.Error(), domain.ErrInvalidFeedURL)
	}
	if scheme := strings.ToLower(u.Scheme); (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", domain.NewValidationError("feedUrl", raw, "must be an absolute http(s) URL", domain.ErrInvalidFeedURL)
	}
	return trimmed, nil
}

func (s *PodcastService) ensureLoadedLocked() {
	if !s.loaded {
		s.reloadLocked()
	}
}

func (s *PodcastService) reloadLocked() {
	loaded, err := s.repository.LoadAll()
	if err != nil {
		s.logger.Warn("failed to load podcasts, starting empty", slog.Any("error", err))
		loaded = nil
	}
	s.podcasts = clonePodcasts(loaded)
	s.loaded = true
}

func (s *PodcastService) persistLocked() {
	if err := s.repository.SaveAll(clonePodcasts(s.podcasts)); err != nil {
		s.logger.Warn("failed to persist podcasts", slog.Any("error", err))
	}
}

func (s *PodcastService) indexLocked(id string) int {
	for i := range s.podcasts {
		if s.podcasts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PodcastService) publish(event domain.Event) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

// IsValidationError reports whether err was caused by caller input.
func IsValidationError(err error) bool {
	var v *domain.ValidationError
	return errors.As(err, &v)
}
