// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/feed"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/httpfetch"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/media"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/playback"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/repository/jsonfile"
	"github.com/tejashwikalptaru/tunelib/internal/artwork"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/logger"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
	"github.com/tejashwikalptaru/tunelib/internal/service"
)

// Application is the root application structure that holds all dependencies.
// Nothing in the module keeps package-level state; every component is
// owned here and reached through this value.
type Application struct {
	// Core dependencies
	logger *slog.Logger
	config Config
	fs     afero.Fs

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	fetcher  *httpfetch.Fetcher
	session  *playback.Session

	// Cover caches
	trackCovers *artwork.Resolver
	podcastArt  *artwork.Resolver

	// Services
	metadataService *service.MetadataService
	playlistService *service.PlaylistService
	libraryService  *service.LibraryService
	podcastService  *service.PodcastService

	bridge *Bridge

	shutdownOnce sync.Once
	stopped      atomic.Bool
}

// Option customizes NewApplication.
type Option func(*options)

type options struct {
	fs         afero.Fs
	logger     *slog.Logger
	httpClient *http.Client
}

// WithFs replaces the OS file system (useful for testing).
func WithFs(fsys afero.Fs) Option {
	return func(o *options) { o.fs = fsys }
}

// WithLogger replaces the logger built from Config.Log.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient replaces the client used for feeds and artwork.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// NewApplication creates a new application with all dependencies wired
// and the persisted library and playlists loaded.
func NewApplication(config Config, opts ...Option) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.logger == nil {
		o.logger = logger.NewLogger(logger.Config{
			Level:  logger.ParseLevel(config.Log.Level, slog.LevelInfo),
			Format: config.Log.Format,
		})
	}

	app := &Application{
		logger: o.logger,
		config: config,
		fs:     o.fs,
	}
	app.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("data_dir", config.DataDir))

	if err := app.fs.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Step 1: Infrastructure
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	fetchOpts := []httpfetch.Option{
		httpfetch.WithTimeout(config.Network.Timeout),
		httpfetch.WithMaxRedirects(config.Network.MaxRedirects),
		httpfetch.WithMaxBodyBytes(config.Network.MaxBodyBytes),
		httpfetch.WithUserAgent("tunelib/" + GetVersionInfo().String()),
	}
	if o.httpClient != nil {
		fetchOpts = append(fetchOpts, httpfetch.WithHTTPClient(o.httpClient))
	}
	app.fetcher = httpfetch.New(app.logger.With(slog.String("component", "fetcher")), fetchOpts...)
	app.session = playback.NewSession(app.eventBus, app.logger)

	// Step 2: Media and artwork
	prober := media.NewMP3Prober()
	tags := media.NewTagReader(app.fs, prober, app.logger)
	transcoder := artwork.NewTranscoder()
	app.metadataService = service.NewMetadataService(app.logger, tags, prober)

	app.trackCovers = artwork.NewResolver(
		artwork.NewStore(app.fs, config.TrackCoverDir()),
		transcoder,
		config.Cover.TrackSize,
		app.logger.With(slog.String("component", "track-covers")),
		app.metadataService.EmbeddedPicture,
		artwork.SiblingFileSource(app.fs),
	)
	app.podcastArt = artwork.NewResolver(
		artwork.NewStore(app.fs, config.PodcastCoverDir()),
		transcoder,
		config.Cover.PodcastSize,
		app.logger.With(slog.String("component", "podcast-artwork")),
	)

	// Step 3: Repositories
	trackRepo := jsonfile.NewTrackRepository(app.fs, config.DataDir, app.logger)
	playlistRepo := jsonfile.NewPlaylistRepository(app.fs, config.DataDir, app.logger)
	podcastRepo := jsonfile.NewPodcastRepository(app.fs, config.DataDir, app.logger)

	// Step 4: Services
	app.playlistService = service.NewPlaylistService(app.logger, playlistRepo, app.eventBus)
	app.libraryService = service.NewLibraryService(
		app.logger,
		trackRepo,
		app.metadataService,
		app.trackCovers,
		app.playlistService,
		app.session,
		app.eventBus,
		service.LibraryConfig{
			BackfillInterval: config.Backfill.Interval,
			BackfillBatch:    config.Backfill.BatchSize,
			BackfillCooldown: config.Backfill.Cooldown,
		},
	)
	app.podcastService = service.NewPodcastService(
		app.logger,
		podcastRepo,
		app.fetcher,
		feed.NewParser(),
		app.podcastArt,
		app.eventBus,
	)

	// Step 5: Load saved state
	ctx := context.Background()
	app.playlistService.Load(ctx)
	app.libraryService.Load(ctx)

	app.bridge = newBridge(app.logger, app.fs, app.libraryService, app.playlistService, app.metadataService, app.trackCovers, app.podcastService)
	return app, nil
}

// Bridge returns the request/response surface used by the presentation layer.
func (a *Application) Bridge() *Bridge {
	return a.bridge
}

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}

// Session returns the now-playing state.
func (a *Application) Session() *playback.Session {
	return a.session
}

// Config returns the configuration the application was built with.
func (a *Application) Config() Config {
	return a.config
}

// StartBackfill begins resolving missing track covers in the background
// until ctx is cancelled or the application shuts down.
// Returns domain.ErrNotInitialized once Shutdown has been called.
func (a *Application) StartBackfill(ctx context.Context) error {
	if a.stopped.Load() {
		return domain.ErrNotInitialized
	}
	a.libraryService.StartBackfill(ctx)
	return nil
}

// Shutdown stops background work and releases the event bus.
// Calling it more than once is safe.
func (a *Application) Shutdown() error {
	var err error
	a.shutdownOnce.Do(func() {
		a.stopped.Store(true)
		a.logger.Info("shutting down application")

		if a.libraryService != nil {
			if shutdownErr := a.libraryService.Shutdown(); shutdownErr != nil {
				a.logger.Warn("failed to shutdown library service", slog.Any("error", shutdownErr))
				err = shutdownErr
			}
		}

		if a.eventBus != nil {
			if closeErr := a.eventBus.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}

		a.logger.Info("application shutdown complete")
	})
	return err
}
