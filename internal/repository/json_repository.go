package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/model"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const watchDebounce = 200 * time.Millisecond

// JSONRepository stores the favorites document in a file on disk.
type JSONRepository struct {
	path string
	dir  string
	base string
	log  *logrus.Entry
	mu   sync.Mutex
}

// NewJSONRepository creates a repository for the given JSON file path.
func NewJSONRepository(path string) (*JSONRepository, error) {
	if path == "" {
		return nil, errors.New("favorites file path is required")
	}

	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	return &JSONRepository{
		path: path,
		dir:  dir,
		base: filepath.Base(path),
		log:  logger.WithComponent("json-repo"),
	}, nil
}

// Load reads, parses and validates the file. A missing or empty file is an empty list.
func (r *JSONRepository) Load(ctx context.Context) ([]model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadUnlocked()
}

func (r *JSONRepository) loadUnlocked() ([]model.Movie, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Movie{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read favorites file: %w", err)
	}
	if len(data) == 0 {
		return []model.Movie{}, nil
	}

	var movies []model.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("decode favorites file: %w", err)
	}
	if err := validateMovies(movies); err != nil {
		return nil, fmt.Errorf("validate favorites file: %w", err)
	}
	return normalize(movies), nil
}

// Save validates the list and writes it atomically (temp file + rename).
func (r *JSONRepository) Save(ctx context.Context, movies []model.Movie) error {
	movies = normalize(movies)
	if err := validateMovies(movies); err != nil {
		return fmt.Errorf("validate before save: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveUnlocked(movies)
}

func (r *JSONRepository) saveUnlocked(movies []model.Movie) error {
	payload, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create favorites dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(r.dir, r.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace favorites file: %w", err)
	}
	return nil
}

// StartWatcher reports changes made to the file by other processes. It watches the
// parent directory so temp+rename replacements are observed, filters events by
// basename and debounces bursts into a single reload. Cancel ctx to stop it.
func (r *JSONRepository) StartWatcher(ctx context.Context, onChange func([]model.Movie)) error {
	if onChange == nil {
		return errors.New("onChange callback is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	reload := func() {
		movies, err := r.Load(ctx)
		if err != nil {
			r.log.Warnf("watch reload failed: %v", err)
			return
		}
		r.log.Debugf("favorites file changed, %d movies", len(movies))
		onChange(movies)
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != r.base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.log.Errorf("watcher error: %v", err)
			}
		}
	}()

	return nil
}
