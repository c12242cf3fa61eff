// Package favorites keeps the user's favorite movies, backed by a repository that
// stores the whole list as one document.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/model"
	"github.com/bassista/go_flix/internal/repository"
	"github.com/containerd/errdefs"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ErrNotFavorite is returned by Get for an id that is not in the list.
var ErrNotFavorite = fmt.Errorf("movie is not a favorite: %w", errdefs.ErrNotFound)

// Store is the in-memory view of the favorites document. Storage is read once on
// first access; each mutation re-reads the stored document, applies the change
// and writes the full list back before updating memory.
type Store struct {
	repo      repository.FavoritesRepository
	validator *validator.Validate
	log       *logrus.Entry

	mu     sync.RWMutex
	loaded bool
	movies []model.Movie
}

func NewStore(repo repository.FavoritesRepository) (*Store, error) {
	if repo == nil {
		return nil, errors.New("favorites repository is required")
	}
	return &Store{
		repo:      repo,
		validator: validator.New(),
		log:       logger.WithComponent("favorites"),
	}, nil
}

// List returns the favorites in insertion order.
func (s *Store) List(ctx context.Context) ([]model.Movie, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.movies), nil
}

// IsFavorite reports whether id is in the list.
func (s *Store) IsFavorite(ctx context.Context, id int) (bool, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.movies, id) >= 0, nil
}

// Get returns the stored copy of a favorite movie.
func (s *Store) Get(ctx context.Context, id int) (model.Movie, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return model.Movie{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.movies, id); i >= 0 {
		return s.movies[i], nil
	}
	return model.Movie{}, ErrNotFavorite
}

// Toggle removes movie if it is a favorite, otherwise appends it. It returns
// whether the movie is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, movie model.Movie) (bool, error) {
	var added bool
	err := s.mutate(ctx, func(current []model.Movie) ([]model.Movie, error) {
		if i := indexOf(current, movie.ID); i >= 0 {
			added = false
			return slices.Delete(current, i, i+1), nil
		}
		if err := s.check(movie); err != nil {
			return nil, err
		}
		added = true
		return append(current, movie), nil
	})
	if err != nil {
		return false, err
	}
	s.log.WithFields(logrus.Fields{"id": movie.ID, "favorite": added}).Info("favorite toggled")
	return added, nil
}

// Add appends movie unless its id is already present. It reports whether the list changed.
func (s *Store) Add(ctx context.Context, movie model.Movie) (bool, error) {
	if err := s.check(movie); err != nil {
		return false, err
	}
	var changed bool
	err := s.mutate(ctx, func(current []model.Movie) ([]model.Movie, error) {
		if indexOf(current, movie.ID) >= 0 {
			return nil, nil
		}
		changed = true
		return append(current, movie), nil
	})
	return changed, err
}

// Remove drops id from the list. It reports whether the list changed.
func (s *Store) Remove(ctx context.Context, id int) (bool, error) {
	var changed bool
	err := s.mutate(ctx, func(current []model.Movie) ([]model.Movie, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, nil
		}
		changed = true
		return slices.Delete(current, i, i+1), nil
	})
	return changed, err
}

// Reload replaces the in-memory list with the stored document.
func (s *Store) Reload(ctx context.Context) error {
	movies, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	s.Replace(movies)
	return nil
}

// Replace sets the in-memory list without writing it, e.g. after another process
// changed the stored document. Duplicate ids keep their first occurrence.
func (s *Store) Replace(movies []model.Movie) {
	clean := dedupe(movies)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = clean
	s.loaded = true
	s.log.Debugf("favorites replaced, %d movies", len(clean))
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	movies, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	s.movies = dedupe(movies)
	s.loaded = true
	return nil
}

// mutate applies fn to the stored document. fn returning a nil list means "no change".
func (s *Store) mutate(ctx context.Context, fn func([]model.Movie) ([]model.Movie, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	current = dedupe(current)

	next, err := fn(slices.Clone(current))
	if err != nil {
		return err
	}
	if next == nil {
		s.movies = current
		s.loaded = true
		return nil
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	s.movies = next
	s.loaded = true
	return nil
}

func (s *Store) check(movie model.Movie) error {
	if err := s.validator.Struct(movie); err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrInvalidArgument, err)
	}
	return nil
}

func indexOf(movies []model.Movie, id int) int {
	return slices.IndexFunc(movies, func(m model.Movie) bool { return m.ID == id })
}

func dedupe(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if indexOf(out, m.ID) < 0 {
			out = append(out, m)
		}
	}
	return out
}
