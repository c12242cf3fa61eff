package repository

import (
	"context"

	"github.com/bassista/go_flix/internal/model"
)

// StorageKey is the fixed name the favorites document is stored under.
const StorageKey = "favoriteMovies"

// FavoritesRepository persists the favorites list as a single JSON array document.
// Load on an empty storage returns an empty list, not an error.
type FavoritesRepository interface {
	Load(ctx context.Context) ([]model.Movie, error)
	Save(ctx context.Context, movies []model.Movie) error
}

// Watcher is implemented by repositories that can report changes made by another process.
type Watcher interface {
	StartWatcher(ctx context.Context, onChange func([]model.Movie)) error
}
