package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/go_flix/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "GO_FLIX"

// ErrMissingAPIKey is returned when no TMDB API key is configured.
var ErrMissingAPIKey = errors.New("TMDB API key is required (set GO_FLIX_TMDB_API_KEY or TMDB_API_KEY)")

type Config struct {
	Server    ServerConfig
	TMDB      TMDBConfig
	Cache     CacheConfig
	Favorites FavoritesConfig
	Misc      MiscConfig
}

type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutDownTimeout    time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins string
}

type TMDBConfig struct {
	APIKey            string
	BaseURL           string
	ImageBaseURL      string
	Language          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

type CacheConfig struct {
	StaleTime       time.Duration
	GCTime          time.Duration
	CleanupInterval time.Duration
}

// FavoritesConfig selects where the favorites document lives: "file" or "redis".
type FavoritesConfig struct {
	Backend       string
	FilePath      string
	Watch         bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

type MiscConfig struct {
	GinMode             string
	LogLevel            string
	WarmupInterval      time.Duration
	NotificationsBuffer int
	HoneybadgerAPIKey   string
	HoneybadgerEnv      string
}

// LoadConfig reads config.yaml from confPath (optional), a .env file from the
// working directory (optional) and GO_FLIX_* environment variables, in increasing
// order of precedence.
func LoadConfig(confPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if confPath != "" {
		v.AddConfigPath(confPath)
	}
	v.AddConfigPath(".")

	setDefaults(v)

	// GO_FLIX_SERVER_PORT overrides server.port and so on.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Debug("no config file found, using defaults and env vars")
	}

	port, err := getEnvOrViperPort("PORT", "server.port", v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               port,
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    v.GetDuration("server.shutdown_timeout"),
			RequestTimeout:     v.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: v.GetString("server.cors_allowed_origins"),
		},
		TMDB: TMDBConfig{
			APIKey:            firstNonEmpty(v.GetString("tmdb.api_key"), os.Getenv("TMDB_API_KEY")),
			BaseURL:           v.GetString("tmdb.base_url"),
			ImageBaseURL:      v.GetString("tmdb.image_base_url"),
			Language:          v.GetString("tmdb.language"),
			Timeout:           v.GetDuration("tmdb.timeout"),
			RequestsPerSecond: v.GetFloat64("tmdb.requests_per_second"),
			Burst:             v.GetInt("tmdb.burst"),
		},
		Cache: CacheConfig{
			StaleTime:       v.GetDuration("cache.stale_time"),
			GCTime:          v.GetDuration("cache.gc_time"),
			CleanupInterval: v.GetDuration("cache.cleanup_interval"),
		},
		Favorites: FavoritesConfig{
			Backend:       strings.ToLower(v.GetString("favorites.backend")),
			FilePath:      v.GetString("favorites.file_path"),
			Watch:         v.GetBool("favorites.watch"),
			RedisAddr:     v.GetString("favorites.redis_addr"),
			RedisPassword: v.GetString("favorites.redis_password"),
			RedisDB:       v.GetInt("favorites.redis_db"),
			RedisKey:      v.GetString("favorites.redis_key"),
		},
		Misc: MiscConfig{
			GinMode:             v.GetString("misc.gin_mode"),
			LogLevel:            getEnvOrDefault("LOG_LEVEL", v.GetString("misc.log_level")),
			WarmupInterval:      v.GetDuration("misc.warmup_interval"),
			NotificationsBuffer: v.GetInt("misc.notifications_buffer"),
			HoneybadgerAPIKey:   firstNonEmpty(v.GetString("misc.honeybadger_api_key"), os.Getenv("HONEYBADGER_API_KEY")),
			HoneybadgerEnv:      v.GetString("misc.honeybadger_env"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8084)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 20*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 15*time.Second)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.timeout", 10*time.Second)
	v.SetDefault("tmdb.requests_per_second", 0)
	v.SetDefault("tmdb.burst", 1)

	v.SetDefault("cache.stale_time", 5*time.Minute)
	v.SetDefault("cache.gc_time", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", time.Minute)

	v.SetDefault("favorites.backend", "file")
	v.SetDefault("favorites.file_path", "./data/favorites.json")
	v.SetDefault("favorites.watch", true)
	v.SetDefault("favorites.redis_addr", "localhost:6379")
	v.SetDefault("favorites.redis_password", "")
	v.SetDefault("favorites.redis_db", 0)
	v.SetDefault("favorites.redis_key", "favoriteMovies")

	v.SetDefault("misc.gin_mode", "release")
	v.SetDefault("misc.log_level", "info")
	v.SetDefault("misc.warmup_interval", 4*time.Minute)
	v.SetDefault("misc.notifications_buffer", 50)
	v.SetDefault("misc.honeybadger_api_key", "")
	v.SetDefault("misc.honeybadger_env", "production")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 || c.Server.ShutDownTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.TMDB.BaseURL == "" {
		return errors.New("tmdb base url is required")
	}
	if c.TMDB.Timeout <= 0 {
		return errors.New("tmdb timeout must be positive")
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return errors.New("tmdb requests per second cannot be negative")
	}
	if c.Cache.GCTime <= 0 {
		return errors.New("cache gc time must be positive")
	}
	if c.Cache.StaleTime < 0 {
		return errors.New("cache stale time cannot be negative")
	}
	switch c.Favorites.Backend {
	case "file":
		if c.Favorites.FilePath == "" {
			return errors.New("favorites file path is required")
		}
		c.Favorites.FilePath = filepath.Clean(c.Favorites.FilePath)
	case "redis":
		if c.Favorites.RedisAddr == "" {
			return errors.New("favorites redis address is required")
		}
	default:
		return fmt.Errorf("unknown favorites backend: %q", c.Favorites.Backend)
	}
	if c.Misc.WarmupInterval < 0 {
		return errors.New("warm-up interval cannot be negative")
	}
	return nil
}

// getEnvOrDefault returns the value of the environment variable key, or def when unset or empty.
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// getEnvOrViperPort lets a bare PORT variable (as set by most PaaS) win over server.port.
func getEnvOrViperPort(envKey, viperKey string, v *viper.Viper) (int, error) {
	if s := os.Getenv(envKey); s != "" {
		port, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", envKey, err)
		}
		return port, nil
	}
	return v.GetInt(viperKey), nil
}
