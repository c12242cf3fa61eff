package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/bassista/go_flix/internal/catalog"
	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/model"
	"github.com/bassista/go_flix/internal/pagination"
	"github.com/bassista/go_flix/internal/tmdb"
	"github.com/gin-gonic/gin"
)

const (
	maxPage      = 500
	maxFeedPages = 10
	maxTrending  = 20
)

// Catalog is the read side the movie endpoints are served from.
type Catalog interface {
	Trending(ctx context.Context, limit int) ([]model.Movie, error)
	RefreshTrending(ctx context.Context, limit int) ([]model.Movie, error)
	NowPlaying(ctx context.Context, page int) (model.MoviePage, error)
	Popular(ctx context.Context, page int) (model.MoviePage, error)
	Search(ctx context.Context, query string, page int) (model.MoviePage, error)
	Detail(ctx context.Context, id int) (catalog.Detail, error)
	Images(ctx context.Context, id int) (model.Images, error)
	Genres(ctx context.Context) ([]model.Genre, error)
	Home(ctx context.Context) (catalog.Home, error)
	NewReleasesFeed() *pagination.Aggregator[model.Movie]
	SearchFeed(query string) *pagination.Aggregator[model.Movie]
	PrefetchDetails(ctx context.Context, id int)
	Invalidate(prefix ...any) int
	Purge() int
}

// ImageResolver turns image paths into CDN URLs.
type ImageResolver interface {
	ImageURL(path *string, size string) string
	ImageSrcSet(path *string) *tmdb.SrcSet
}

// MovieCard is a movie with its resolved image URLs.
type MovieCard struct {
	model.Movie
	PosterURL    string       `json:"poster_url"`
	BackdropURL  string       `json:"backdrop_url"`
	PosterSrcSet *tmdb.SrcSet `json:"poster_srcset,omitempty"`
}

type pageResponse struct {
	Page         int         `json:"page"`
	Results      []MovieCard `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type feedResponse struct {
	Results      []MovieCard `json:"results"`
	Pages        int         `json:"pages"`
	TotalResults int         `json:"total_results"`
	HasMore      bool        `json:"has_more"`
}

type detailResponse struct {
	catalog.Detail
	PosterURL   string `json:"poster_url"`
	BackdropURL string `json:"backdrop_url"`
}

// imageResponse is a movie image with its CDN URL.
type imageResponse struct {
	model.ImageData
	URL string `json:"url"`
}

type imagesResponse struct {
	ID        int             `json:"id"`
	Backdrops []imageResponse `json:"backdrops"`
	Posters   []imageResponse `json:"posters"`
	Logos     []imageResponse `json:"logos"`
}

type MovieController struct {
	catalog Catalog
	images  ImageResolver
}

func NewMovieController(c Catalog, images ImageResolver) *MovieController {
	return &MovieController{catalog: c, images: images}
}

func (mc *MovieController) card(m model.Movie) MovieCard {
	return MovieCard{
		Movie:        m,
		PosterURL:    mc.images.ImageURL(m.PosterPath, tmdb.SizeMedium),
		BackdropURL:  mc.images.ImageURL(m.BackdropPath, tmdb.SizeLarge),
		PosterSrcSet: mc.images.ImageSrcSet(m.PosterPath),
	}
}

func (mc *MovieController) cards(movies []model.Movie) []MovieCard {
	out := make([]MovieCard, 0, len(movies))
	for _, m := range movies {
		out = append(out, mc.card(m))
	}
	return out
}

func (mc *MovieController) page(p model.MoviePage) pageResponse {
	return pageResponse{Page: p.Page, Results: mc.cards(p.Results), TotalPages: p.TotalPages, TotalResults: p.TotalResults}
}

// Home handles GET /home.
func (mc *MovieController) Home(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	home, err := mc.catalog.Home(c.Request.Context())
	if err != nil {
		respondError(c, log, "home", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trending":     mc.cards(home.Trending),
		"new_releases": mc.cards(home.NewReleases),
		"has_more":     home.HasMore,
	})
}

// Trending handles GET /movies/trending?limit=&refresh=. refresh=true skips the cached list.
func (mc *MovieController) Trending(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	limit, ok := intQuery(c, "limit", catalog.DefaultTrendingLimit, 1, maxTrending)
	if !ok {
		return
	}
	load := mc.catalog.Trending
	if c.Query("refresh") == "true" {
		load = mc.catalog.RefreshTrending
	}
	movies, err := load(c.Request.Context(), limit)
	if err != nil {
		respondError(c, log, "trending", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": mc.cards(movies)})
}

// NowPlaying handles GET /movies/now_playing?page=.
func (mc *MovieController) NowPlaying(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	page, ok := intQuery(c, "page", 1, 1, maxPage)
	if !ok {
		return
	}
	p, err := mc.catalog.NowPlaying(c.Request.Context(), page)
	if err != nil {
		respondError(c, log, "now playing", err)
		return
	}
	c.JSON(http.StatusOK, mc.page(p))
}

// Popular handles GET /movies/popular?page=.
func (mc *MovieController) Popular(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	page, ok := intQuery(c, "page", 1, 1, maxPage)
	if !ok {
		return
	}
	p, err := mc.catalog.Popular(c.Request.Context(), page)
	if err != nil {
		respondError(c, log, "popular", err)
		return
	}
	c.JSON(http.StatusOK, mc.page(p))
}

// Search handles GET /movies/search?q=&page=.
func (mc *MovieController) Search(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "missing query parameter q")
		return
	}
	page, ok := intQuery(c, "page", 1, 1, maxPage)
	if !ok {
		return
	}
	p, err := mc.catalog.Search(c.Request.Context(), query, page)
	if err != nil {
		respondError(c, log, "search", err)
		return
	}
	c.JSON(http.StatusOK, mc.page(p))
}

// NowPlayingFeed handles GET /movies/feed/now_playing?pages=.
func (mc *MovieController) NowPlayingFeed(c *gin.Context) {
	mc.feed(c, "now playing feed", mc.catalog.NewReleasesFeed())
}

// SearchFeed handles GET /movies/feed/search?q=&pages=.
func (mc *MovieController) SearchFeed(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "missing query parameter q")
		return
	}
	mc.feed(c, "search feed", mc.catalog.SearchFeed(query))
}

// feed loads up to ?pages= pages into agg and returns the de-duplicated items.
func (mc *MovieController) feed(c *gin.Context, op string, agg *pagination.Aggregator[model.Movie]) {
	log := logger.WithComponent("movie-controller")
	pages, ok := intQuery(c, "pages", 1, 1, maxFeedPages)
	if !ok {
		return
	}
	for i := 0; i < pages; i++ {
		if i > 0 && !agg.HasMore() {
			break
		}
		if _, err := agg.LoadMore(c.Request.Context()); err != nil {
			respondError(c, log, op, err)
			return
		}
	}
	c.JSON(http.StatusOK, feedResponse{
		Results:      mc.cards(agg.Items()),
		Pages:        agg.Pages(),
		TotalResults: agg.TotalResults(),
		HasMore:      agg.HasMore(),
	})
}

// Detail handles GET /movies/:id.
func (mc *MovieController) Detail(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	id, ok := idParam(c)
	if !ok {
		return
	}
	d, err := mc.catalog.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "movie detail", err)
		return
	}
	c.JSON(http.StatusOK, detailResponse{
		Detail:      d,
		PosterURL:   mc.images.ImageURL(d.Movie.PosterPath, tmdb.SizeMedium),
		BackdropURL: mc.images.ImageURL(d.Movie.BackdropPath, tmdb.SizeOriginal),
	})
}

// Images handles GET /movies/:id/images.
func (mc *MovieController) Images(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	id, ok := idParam(c)
	if !ok {
		return
	}
	img, err := mc.catalog.Images(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "movie images", err)
		return
	}
	c.JSON(http.StatusOK, imagesResponse{
		ID:        id,
		Backdrops: mc.imageList(img.Backdrops, tmdb.SizeLarge),
		Posters:   mc.imageList(img.Posters, tmdb.SizeMedium),
		Logos:     mc.imageList(img.Logos, tmdb.SizeMedium),
	})
}

func (mc *MovieController) imageList(in []model.ImageData, size string) []imageResponse {
	out := make([]imageResponse, 0, len(in))
	for _, img := range in {
		out = append(out, imageResponse{ImageData: img, URL: mc.images.ImageURL(&img.FilePath, size)})
	}
	return out
}

// Prefetch handles POST /movies/:id/prefetch. It returns before the data is loaded.
func (mc *MovieController) Prefetch(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	logger.WithComponent("movie-controller").Debugf("prefetching movie %d", id)
	mc.catalog.PrefetchDetails(c.Request.Context(), id)
	c.Status(http.StatusAccepted)
}

// Genres handles GET /genres.
func (mc *MovieController) Genres(c *gin.Context) {
	log := logger.WithComponent("movie-controller")
	genres, err := mc.catalog.Genres(c.Request.Context())
	if err != nil {
		respondError(c, log, "genres", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// Invalidate handles DELETE /cache?key=part&key=part. Without parts every entry is marked
// stale. With purge=true every entry is dropped instead.
func (mc *MovieController) Invalidate(c *gin.Context) {
	if c.Query("purge") == "true" {
		c.JSON(http.StatusOK, gin.H{"purged": mc.catalog.Purge()})
		return
	}
	parts := c.QueryArray("key")
	prefix := make([]any, len(parts))
	for i, p := range parts {
		prefix[i] = p
	}
	n := mc.catalog.Invalidate(prefix...)
	c.JSON(http.StatusOK, gin.H{"invalidated": n})
}
