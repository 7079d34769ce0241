package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// Cover backfill defaults.
const (
	DefaultBackfillInterval = 5 * time.Second
	DefaultBackfillBatch    = 2
	DefaultBackfillCooldown = 60 * time.Second
)

// LibraryConfig tunes the background cover backfill.
type LibraryConfig struct {
	BackfillInterval time.Duration
	BackfillBatch    int
	BackfillCooldown time.Duration
}

// DefaultLibraryConfig returns the default backfill settings.
func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{
		BackfillInterval: DefaultBackfillInterval,
		BackfillBatch:    DefaultBackfillBatch,
		BackfillCooldown: DefaultBackfillCooldown,
	}
}

// LibraryService owns the track collection.
// Mutations are serialized through one mutex and each one persists the
// durable subset of the collection. Slow work (tag parsing, cover
// resolution) happens outside the lock and is re-validated before insert.
type LibraryService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.TrackRepository
	metadata   *MetadataService
	covers     ports.CoverResolver
	playlists  *PlaylistService
	playback   ports.Playback
	bus        ports.EventBus
	config     LibraryConfig

	// State
	tracks   []domain.Track
	attempts map[string]time.Time
	now      func() time.Time

	// Background backfill
	cancelBackfill context.CancelFunc
	backfillDone   chan struct{}

	// Concurrency control
	mu sync.Mutex
}

// NewLibraryService creates a new library service with an empty collection.
// playlists and playback are optional collaborators for cascading removals.
func NewLibraryService(
	logger *slog.Logger,
	repository ports.TrackRepository,
	metadata *MetadataService,
	covers ports.CoverResolver,
	playlists *PlaylistService,
	playback ports.Playback,
	bus ports.EventBus,
	config LibraryConfig,
) *LibraryService {
	if config.BackfillInterval <= 0 {
		config.BackfillInterval = DefaultBackfillInterval
	}
	if config.BackfillBatch <= 0 {
		config.BackfillBatch = DefaultBackfillBatch
	}
	if config.BackfillCooldown < 0 {
		config.BackfillCooldown = DefaultBackfillCooldown
	}

	return &LibraryService{
		logger:     logger.With(slog.String("service", "LibraryService")),
		repository: repository,
		metadata:   metadata,
		covers:     covers,
		playlists:  playlists,
		playback:   playback,
		bus:        bus,
		config:     config,
		tracks:     make([]domain.Track, 0),
		attempts:   make(map[string]time.Time),
		now:        time.Now,
	}
}

// Load replaces the in-memory collection with the persisted snapshot.
// Records with an empty or duplicate id get a fresh one. Load never fails:
// a missing or unreadable snapshot yields an empty library.
func (s *LibraryService) Load(_ context.Context) []domain.Track {
	loaded, err := s.repository.LoadAll()
	if err != nil {
		s.logger.Warn("failed to load tracks, starting empty", slog.Any("error", err))
		loaded = nil
	}

	s.mu.Lock()
	tracks, regenerated := normalizeIDs(loaded)
	s.tracks = tracks
	s.attempts = make(map[string]time.Time)
	if regenerated > 0 {
		s.logger.Info("regenerated track ids", slog.Int("count", regenerated))
		s.persistLocked()
	}
	snapshot := cloneTracks(s.tracks)
	s.mu.Unlock()

	s.publish(domain.NewLibraryLoadedEvent(len(snapshot)))
	return snapshot
}

// Tracks returns a copy of the collection in insertion order.
func (s *LibraryService) Tracks() []domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTracks(s.tracks)
}

// Track returns the track with the given id.
func (s *LibraryService) Track(id string) (domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return cloneTrack(s.tracks[i]), nil
	}
	return domain.Track{}, domain.ErrTrackNotFound
}

// AddTrack ingests src into the library.
//
// Transient sources are inserted immediately with default metadata and a
// probed duration. A durable path already in the library is a no-op that
// returns the existing track. Otherwise metadata and cover are resolved
// before the single insert.
func (s *LibraryService) AddTrack(ctx context.Context, src domain.Source) (domain.Track, error) {
	ref := strings.TrimSpace(src.Ref)
	if ref == "" {
		return domain.Track{}, domain.NewValidationError("path", src.Ref, "source reference must not be empty", domain.ErrInvalidFilePath)
	}

	if domain.IsTransientRef(ref) {
		return s.addTransient(ref, src), nil
	}

	if existing, ok := s.byPath(ref); ok {
		s.logger.Debug("track already in library", slog.String("path", ref))
		return existing, nil
	}

	meta := s.metadata.Extract(ctx, ref)
	cover := meta.Cover
	if s.covers != nil {
		if cached, ok := s.covers.Resolve(ctx, ref); ok {
			cover = cached
		}
	}

	track := domain.Track{
		ID:       uuid.NewString(),
		Name:     meta.Title,
		Artist:   meta.Artist,
		Album:    meta.Album,
		Duration: meta.Duration,
		Path:     ref,
		Cover:    cover,
	}

	s.mu.Lock()
	// Another call may have inserted the same path while we were extracting.
	if i := s.indexByPathLocked(ref); i >= 0 {
		existing := cloneTrack(s.tracks[i])
		s.mu.Unlock()
		return existing, nil
	}
	s.tracks = append(s.tracks, track)
	s.persistLocked()
	s.mu.Unlock()

	s.publish(domain.NewTrackAddedEvent(cloneTrack(track)))
	return cloneTrack(track), nil
}

func (s *LibraryService) addTransient(ref string, src domain.Source) domain.Track {
	name := src.Name
	if name == "" && !strings.HasPrefix(strings.ToLower(ref), "data:") {
		name = ref
	}
	meta := DefaultMetadata(TitleFromName(name))

	content := src.Content
	if content == nil {
		content = dataURIPayload(ref)
	}
	meta.Duration = s.metadata.ProbeDuration(content)

	track := domain.Track{
		ID:       uuid.NewString(),
		Name:     meta.Title,
		Artist:   meta.Artist,
		Album:    meta.Album,
		Duration: meta.Duration,
		Path:     ref,
	}

	s.mu.Lock()
	s.tracks = append(s.tracks, track)
	s.persistLocked()
	s.mu.Unlock()

	s.publish(domain.NewTrackAddedEvent(cloneTrack(track)))
	return cloneTrack(track)
}

// AddTracks ingests every source in order. A failing source is logged and skipped.
func (s *LibraryService) AddTracks(ctx context.Context, sources []domain.Source) []domain.Track {
	added := make([]domain.Track, 0, len(sources))
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		track, err := s.AddTrack(ctx, src)
		if err != nil {
			s.logger.Warn("skipping source", slog.String("ref", src.Ref), slog.Any("error", err))
			continue
		}
		added = append(added, track)
	}
	return added
}

// RemoveTrack deletes a track, drops it from every playlist and stops
// playback when it is the active track.
func (s *LibraryService) RemoveTrack(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewValidationError("id", id, "track id must not be empty", domain.ErrInvalidID)
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}
	s.tracks = append(s.tracks[:i:i], s.tracks[i+1:]...)
	delete(s.attempts, id)
	s.persistLocked()
	s.mu.Unlock()

	if s.playlists != nil {
		s.playlists.RemoveTrackEverywhere(ctx, id)
	}
	if s.playback != nil && s.playback.CurrentTrackID() == id {
		if err := s.playback.Stop(); err != nil {
			s.logger.Warn("failed to stop playback", slog.String("track_id", id), slog.Any("error", err))
		}
	}

	s.publish(domain.NewTrackRemovedEvent(id))
	return nil
}

// ReplaceAll overwrites the collection and persists its durable subset.
func (s *LibraryService) ReplaceAll(_ context.Context, tracks []domain.Track) {
	s.mu.Lock()
	s.tracks, _ = normalizeIDs(tracks)
	s.persistLocked()
	count := len(s.tracks)
	s.mu.Unlock()

	s.publish(domain.NewLibraryLoadedEvent(count))
}

type coverUpdate struct {
	id    string
	stale *string
	cover *string
}

// BackfillCovers runs one backfill cycle and returns the number of tracks that got a cover.
// Candidates are durable tracks whose cover is missing, or is a file:// reference
// whose cache file no longer exists, and whose last attempt is older than the
// cooldown. At most BackfillBatch are attempted concurrently.
func (s *LibraryService) BackfillCovers(ctx context.Context) int {
	if s.covers == nil {
		return 0
	}

	type candidate struct {
		id, path string
		cover    *string
	}

	s.mu.Lock()
	now := s.now()
	eligible := make([]candidate, 0, len(s.tracks))
	for _, t := range s.tracks {
		if !t.IsDurable() || (t.Cover != nil && !isFileRef(*t.Cover)) {
			continue
		}
		if last, ok := s.attempts[t.ID]; ok && now.Sub(last) < s.config.BackfillCooldown {
			continue
		}
		t = cloneTrack(t)
		eligible = append(eligible, candidate{id: t.ID, path: t.Path, cover: t.Cover})
	}
	s.mu.Unlock()

	// Cache lookups stat the file system, so they run unlocked.
	candidates := make([]candidate, 0, s.config.BackfillBatch)
	for _, c := range eligible {
		if len(candidates) == s.config.BackfillBatch {
			break
		}
		if c.cover != nil && s.covers.Cached(*c.cover) {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return 0
	}

	s.mu.Lock()
	for _, c := range candidates {
		s.attempts[c.id] = now
	}
	s.mu.Unlock()

	p := pool.NewWithResults[coverUpdate]().WithMaxGoroutines(len(candidates))
	for _, c := range candidates {
		p.Go(func() coverUpdate {
			cover, ok := s.covers.Resolve(ctx, c.path)
			if !ok {
				return coverUpdate{id: c.id, stale: c.cover}
			}
			return coverUpdate{id: c.id, stale: c.cover, cover: cover}
		})
	}
	results := p.Wait()

	applied := make([]coverUpdate, 0, len(results))
	s.mu.Lock()
	for _, r := range results {
		if r.cover == nil {
			continue
		}
		// The track may have been removed or given a cover meanwhile.
		i := s.indexLocked(r.id)
		if i < 0 || !sameRef(s.tracks[i].Cover, r.stale) {
			continue
		}
		cover := *r.cover
		s.tracks[i].Cover = &cover
		delete(s.attempts, r.id)
		applied = append(applied, r)
	}
	if len(applied) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	for _, u := range applied {
		s.publish(domain.NewTrackCoverResolvedEvent(u.id, *u.cover))
	}
	if len(applied) > 0 {
		s.logger.Debug("backfilled covers", slog.Int("count", len(applied)), slog.Int("attempted", len(candidates)))
	}
	return len(applied)
}

func isFileRef(ref string) bool {
	return strings.HasPrefix(strings.ToLower(ref), "file://")
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StartBackfill runs BackfillCovers every BackfillInterval until ctx is
// cancelled or Shutdown is called. Calling it while running is a no-op.
func (s *LibraryService) StartBackfill(ctx context.Context) {
	s.mu.Lock()
	if s.cancelBackfill != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancelBackfill = cancel
	s.backfillDone = done
	interval := s.config.BackfillInterval
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.BackfillCovers(ctx)
			}
		}
	}()
}

// Shutdown stops the background backfill and waits for it to exit.
func (s *LibraryService) Shutdown() error {
	s.mu.Lock()
	cancel, done := s.cancelBackfill, s.backfillDone
	s.cancelBackfill, s.backfillDone = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// persistLocked saves the durable subset of the collection.
// Transient tracks stay in memory only. Failures are logged.
func (s *LibraryService) persistLocked() {
	durable := make([]domain.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		if t.IsDurable() {
			durable = append(durable, cloneTrack(t))
		}
	}
	if err := s.repository.SaveAll(durable); err != nil {
		s.logger.Warn("failed to persist tracks", slog.Any("error", err))
	}
}

func (s *LibraryService) publish(event domain.Event) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

func (s *LibraryService) byPath(path string) (domain.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexByPathLocked(path); i >= 0 {
		return cloneTrack(s.tracks[i]), true
	}
	return domain.Track{}, false
}

func (s *LibraryService) indexLocked(id string) int {
	for i := range s.tracks {
		if s.tracks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *LibraryService) indexByPathLocked(path string) int {
	for i := range s.tracks {
		if s.tracks[i].IsDurable() && s.tracks[i].Path == path {
			return i
		}
	}
	return -1
}

// normalizeIDs copies tracks, replacing empty or repeated ids with fresh ones.
func normalizeIDs(tracks []domain.Track) ([]domain.Track, int) {
	out := make([]domain.Track, 0, len(tracks))
	seen := make(map[string]bool, len(tracks))
	regenerated := 0
	for _, t := range tracks {
		t = cloneTrack(t)
		if t.ID == "" || seen[t.ID] {
			t.ID = uuid.NewString()
			regenerated++
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, regenerated
}

func cloneTrack(t domain.Track) domain.Track {
	if t.Cover != nil {
		cover := *t.Cover
		t.Cover = &cover
	}
	return t
}

func cloneTracks(tracks []domain.Track) []domain.Track {
	out := make([]domain.Track, len(tracks))
	for i, t := range tracks {
		out[i] = cloneTrack(t)
	}
	return out
}

// dataURIPayload decodes the body of a base64 data: reference, or returns nil.
func dataURIPayload(ref string) io.Reader {
	if !strings.HasPrefix(strings.ToLower(ref), "data:") {
		return nil
	}
	header, payload, ok := strings.Cut(ref, ",")
	if !ok || !strings.HasSuffix(strings.ToLower(header), ";base64") {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	return bytes.NewReader(data)
}
