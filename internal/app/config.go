package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/httpfetch"
	"github.com/tejashwikalptaru/tunelib/internal/service"
)

// Config file lookup.
const (
	ConfigName = "tunelib"
	ConfigType = "toml"
	EnvPrefix  = "TUNELIB"
)

// Config holds application configuration.
type Config struct {
	// DataDir holds the snapshots and both cover caches
	DataDir string `mapstructure:"data_dir"`

	Log      LogConfig      `mapstructure:"log"`
	Cover    CoverConfig    `mapstructure:"cover"`
	Network  NetworkConfig  `mapstructure:"network"`
	Backfill BackfillConfig `mapstructure:"backfill"`
}

// LogConfig controls logging verbosity and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// CoverConfig sets the thumbnail edge length, in pixels, of each cache.
type CoverConfig struct {
	TrackSize   int `mapstructure:"track_size"`
	PodcastSize int `mapstructure:"podcast_size"`
}

// NetworkConfig bounds feed and artwork downloads.
type NetworkConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRedirects int           `mapstructure:"max_redirects"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// BackfillConfig tunes the background cover backfill.
type BackfillConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{
		DataDir: defaultDataDir(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cover: CoverConfig{
			TrackSize:   256,
			PodcastSize: 512,
		},
		Network: NetworkConfig{
			Timeout:      httpfetch.DefaultTimeout,
			MaxRedirects: httpfetch.DefaultMaxRedirects,
			MaxBodyBytes: httpfetch.DefaultMaxBodyBytes,
		},
		Backfill: BackfillConfig{
			Interval:  service.DefaultBackfillInterval,
			BatchSize: service.DefaultBackfillBatch,
			Cooldown:  service.DefaultBackfillCooldown,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tunelib")
	}
	return ".tunelib"
}

// LoadConfig reads configuration from fsys.
//
// With an explicit path only that file is read and it must exist. Otherwise
// tunelib.toml is searched in $HOME/.config/tunelib and the working
// directory, and a missing file leaves the defaults in place. TUNELIB_*
// environment variables override both (TUNELIB_COVER_TRACK_SIZE sets
// cover.track_size).
func LoadConfig(fsys afero.Fs, path string) (Config, error) {
	v := viper.New()
	v.SetFs(fsys)

	defaults := DefaultConfig()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("cover.track_size", defaults.Cover.TrackSize)
	v.SetDefault("cover.podcast_size", defaults.Cover.PodcastSize)
	v.SetDefault("network.timeout", defaults.Network.Timeout)
	v.SetDefault("network.max_redirects", defaults.Network.MaxRedirects)
	v.SetDefault("network.max_body_bytes", defaults.Network.MaxBodyBytes)
	v.SetDefault("backfill.interval", defaults.Backfill.Interval)
	v.SetDefault("backfill.batch_size", defaults.Backfill.BatchSize)
	v.SetDefault("backfill.cooldown", defaults.Backfill.Cooldown)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType(ConfigType)
		v.AddConfigPath("$HOME/.config/tunelib")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DataDir) == "":
		return errors.New("invalid config: data_dir must not be empty")
	case c.Cover.TrackSize <= 0:
		return fmt.Errorf("invalid config: cover.track_size must be positive, got %d", c.Cover.TrackSize)
	case c.Cover.PodcastSize <= 0:
		return fmt.Errorf("invalid config: cover.podcast_size must be positive, got %d", c.Cover.PodcastSize)
	case c.Network.Timeout <= 0:
		return fmt.Errorf("invalid config: network.timeout must be positive, got %s", c.Network.Timeout)
	case c.Network.MaxRedirects < 0:
		return fmt.Errorf("invalid config: network.max_redirects must not be negative, got %d", c.Network.MaxRedirects)
	case c.Network.MaxBodyBytes <= 0:
		return fmt.Errorf("invalid config: network.max_body_bytes must be positive, got %d", c.Network.MaxBodyBytes)
	}
	return nil
}

// TrackCoverDir is the cache directory for track covers.
func (c Config) TrackCoverDir() string {
	return filepath.Join(c.DataDir, "covers", "tracks")
}

// PodcastCoverDir is the cache directory for podcast artwork.
func (c Config) PodcastCoverDir() string {
	return filepath.Join(c.DataDir, "covers", "podcasts")
}
