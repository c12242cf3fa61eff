package controller

import (
	"context"
	"net/http"

	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/model"
	"github.com/gin-gonic/gin"
)

// FavoritesStore is the favorites list as seen by the HTTP layer.
type FavoritesStore interface {
	List(ctx context.Context) ([]model.Movie, error)
	IsFavorite(ctx context.Context, id int) (bool, error)
	Get(ctx context.Context, id int) (model.Movie, error)
	Toggle(ctx context.Context, movie model.Movie) (bool, error)
	Add(ctx context.Context, movie model.Movie) (bool, error)
	Remove(ctx context.Context, id int) (bool, error)
	Reload(ctx context.Context) error
}

type FavoritesController struct {
	store  FavoritesStore
	movies *MovieController
}

// NewFavoritesController reuses mc to resolve image URLs of listed movies.
func NewFavoritesController(store FavoritesStore, mc *MovieController) *FavoritesController {
	return &FavoritesController{store: store, movies: mc}
}

// List handles GET /favorites.
func (fc *FavoritesController) List(c *gin.Context) {
	log := logger.WithComponent("favorites-controller")
	movies, err := fc.store.List(c.Request.Context())
	if err != nil {
		respondError(c, log, "list favorites", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": fc.movies.cards(movies)})
}

// Status handles GET /favorites/:id. A favorite is returned with its stored card.
func (fc *FavoritesController) Status(c *gin.Context) {
	log := logger.WithComponent("favorites-controller")
	id, ok := idParam(c)
	if !ok {
		return
	}
	fav, err := fc.store.IsFavorite(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "favorite status", err)
		return
	}
	if !fav {
		c.JSON(http.StatusOK, gin.H{"id": id, "favorite": false})
		return
	}
	movie, err := fc.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "favorite status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": true, "movie": fc.movies.card(movie)})
}

// Add handles POST /favorites. Adding a movie twice is not an error.
func (fc *FavoritesController) Add(c *gin.Context) {
	log := logger.WithComponent("favorites-controller")
	var movie model.Movie
	if err := c.ShouldBindJSON(&movie); err != nil {
		log.Debugf("add favorite: invalid body: %v", err)
		badRequest(c, "invalid movie payload")
		return
	}
	added, err := fc.store.Add(c.Request.Context(), movie)
	if err != nil {
		respondError(c, log, "add favorite", err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": movie.ID, "favorite": true})
}

// Reload handles POST /favorites/reload: the list is re-read from storage, e.g.
// after the redis document was edited by another instance.
func (fc *FavoritesController) Reload(c *gin.Context) {
	log := logger.WithComponent("favorites-controller")
	if err := fc.store.Reload(c.Request.Context()); err != nil {
		respondError(c, log, "reload favorites", err)
		return
	}
	fc.List(c)
}

// Toggle handles POST /favorites/toggle with a movie as body.
func (fc *FavoritesController) Toggle(c *gin.Context) {
	log := logger.WithComponent("favorites-controller")
	var movie model.Movie
	if err := c.ShouldBindJSON(&movie); err != nil {
		log.Debugf("toggle favorite: invalid body: %v", err)
		badRequest(c, "invalid movie payload")
		return
	}
	fav, err := fc.store.Toggle(c.Request.Context(), movie)
	if err != nil {
		respondError(c, log, "toggle favorite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": movie.ID, "favorite": fav})
}

// Remove handles DELETE /favorites/:id.
func (fc *FavoritesController) Remove(c *gin.Context) {
	log := logger.WithComponent("favorites-controller")
	id, ok := idParam(c)
	if !ok {
		return
	}
	removed, err := fc.store.Remove(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "remove favorite", err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie is not a favorite"})
		return
	}
	c.Status(http.StatusNoContent)
}
