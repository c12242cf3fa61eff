package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bassista/go_flix/internal/cache"
	"github.com/bassista/go_flix/internal/catalog"
	"github.com/bassista/go_flix/internal/config"
	"github.com/bassista/go_flix/internal/favorites"
	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/model"
	"github.com/bassista/go_flix/internal/notify"
	"github.com/bassista/go_flix/internal/repository"
	"github.com/bassista/go_flix/internal/scheduler"
	"github.com/bassista/go_flix/internal/tmdb"
	"github.com/redis/go-redis/v9"
)

// App is the application container (long-lived services + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config    *config.Config
	Client    *tmdb.Client
	Cache     *cache.QueryCache
	Catalog   *catalog.Service
	Repo      repository.FavoritesRepository
	Favorites *favorites.Store
	Notices   *notify.Recorder
	Warmup    *scheduler.PollingScheduler

	BaseCtx context.Context
	Cancel  context.CancelFunc

	closers []func() error
}

// New builds every service from cfg. It does not start background work; see StartWatchers.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	notices := notify.NewRecorder(cfg.Misc.NotificationsBuffer)
	client, err := tmdb.NewClient(tmdb.ClientConfig{
		BaseURL:           cfg.TMDB.BaseURL,
		ImageBaseURL:      cfg.TMDB.ImageBaseURL,
		APIKey:            cfg.TMDB.APIKey,
		Language:          cfg.TMDB.Language,
		Timeout:           cfg.TMDB.Timeout,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
		Notifier: notify.Multi{
			notices,
			notify.LogNotifier{Entry: logger.WithComponent("toast")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create tmdb client: %w", err)
	}

	qc := cache.NewQueryCache(cache.Config{
		StaleTime:       cfg.Cache.StaleTime,
		GCTime:          cfg.Cache.GCTime,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})
	svc, err := catalog.NewService(client, qc)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Client:  client,
		Cache:   qc,
		Catalog: svc,
		Notices: notices,
		Warmup:  scheduler.NewPollingScheduler(svc, cfg.Misc.WarmupInterval),
	}

	repo, err := a.newRepository()
	if err != nil {
		return nil, err
	}
	store, err := favorites.NewStore(repo)
	if err != nil {
		return nil, err
	}
	a.Repo = repo
	a.Favorites = store
	a.BaseCtx, a.Cancel = context.WithCancel(context.Background())
	return a, nil
}

func (a *App) newRepository() (repository.FavoritesRepository, error) {
	fc := a.Config.Favorites
	switch fc.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fc.RedisAddr,
			Password: fc.RedisPassword,
			DB:       fc.RedisDB,
		})
		a.closers = append(a.closers, rdb.Close)
		return repository.NewRedisRepository(rdb, fc.RedisKey)
	case "file", "":
		return repository.NewJSONRepository(fc.FilePath)
	default:
		return nil, fmt.Errorf("unknown favorites backend: %q", fc.Backend)
	}
}

// StartWatchers starts the favorites file watcher (when enabled and supported by the
// backend) and the warm-up scheduler. Both stop when Shutdown is called.
func (a *App) StartWatchers() error {
	if w, ok := a.Repo.(repository.Watcher); ok && a.Config.Favorites.Watch {
		err := w.StartWatcher(a.BaseCtx, func(movies []model.Movie) {
			a.Favorites.Replace(movies)
		})
		if err != nil {
			return fmt.Errorf("start favorites watcher: %w", err)
		}
	}

	a.Warmup.Start(a.BaseCtx)
	return nil
}

func (a *App) Shutdown() {
	if a == nil {
		return
	}
	if a.Cancel != nil {
		a.Cancel()
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.WithComponent("app").Warnf("close: %v", err)
		}
	}
	a.closers = nil
}
