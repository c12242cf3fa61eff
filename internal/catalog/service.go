// Package catalog composes the metadata client, the query cache and the pagination
// aggregator into the read operations the API and the CLI serve.
package catalog

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"time"

	"github.com/bassista/go_flix/internal/cache"
	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/model"
	"github.com/bassista/go_flix/internal/pagination"
	"github.com/containerd/errdefs"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTrendingLimit = 10
	TopCredits           = 5
)

// Cache resources. Keys are built as resource followed by parameters.
const (
	KeyTrending   = "trendingMovies"
	KeyMovies     = "movies"
	KeyNowPlaying = "now_playing"
	KeyPopular    = "popular"
	KeySearch     = "searchMovies"
	KeyMovie      = "movie"
	KeyCredits    = "movieCredits"
	KeyTrailer    = "movieTrailer"
	KeyImages     = "movieImages"
	KeyGenres     = "genres"
)

var (
	nowPlayingOpts = []cache.Option{cache.WithStaleTime(5 * time.Minute), cache.WithGCTime(10 * time.Minute)}
	detailsOpts    = []cache.Option{cache.WithStaleTime(10 * time.Minute), cache.WithGCTime(30 * time.Minute)}
	searchStale    = 2 * time.Minute

	searchable = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// MovieAPI is the subset of the metadata client the catalog reads from.
type MovieAPI interface {
	Trending(ctx context.Context) (*model.MoviePage, error)
	NowPlaying(ctx context.Context, page int) (*model.MoviePage, error)
	Popular(ctx context.Context, page int) (*model.MoviePage, error)
	Search(ctx context.Context, query string, page int) (*model.MoviePage, error)
	MovieDetails(ctx context.Context, id int) (*model.Movie, error)
	Credits(ctx context.Context, id int) (*model.Credits, error)
	Trailer(ctx context.Context, id int) (string, error)
	Images(ctx context.Context, id int) (*model.Images, error)
	Genres(ctx context.Context) ([]model.Genre, error)
}

// Detail is the combined movie detail view.
type Detail struct {
	Movie      model.Movie        `json:"movie"`
	TrailerKey string             `json:"trailer_key,omitempty"`
	Cast       []model.CastMember `json:"cast"`
	Crew       []model.CrewMember `json:"crew"`
	Genres     []string           `json:"genres"`
	Runtime    string             `json:"runtime,omitempty"`
	Released   string             `json:"released,omitempty"`
}

// Home is the landing view: the trending head and the first new-release page.
type Home struct {
	Trending    []model.Movie `json:"trending"`
	NewReleases []model.Movie `json:"new_releases"`
	HasMore     bool          `json:"has_more"`
}

// Service serves cached catalog reads. It is safe for concurrent use.
type Service struct {
	api   MovieAPI
	cache *cache.QueryCache
	log   *logrus.Entry
}

func NewService(api MovieAPI, qc *cache.QueryCache) (*Service, error) {
	if api == nil {
		return nil, errors.New("movie api is required")
	}
	if qc == nil {
		return nil, errors.New("query cache is required")
	}
	return &Service{api: api, cache: qc, log: logger.WithComponent("catalog")}, nil
}

// Searchable reports whether query contains at least one ASCII letter or digit.
func Searchable(query string) bool {
	return searchable.MatchString(query)
}

func trendingKey() cache.Key { return cache.NewKey(KeyTrending) }
func nowPlayingKey(page int) cache.Key { return cache.NewKey(KeyMovies, KeyNowPlaying, page) }
func popularKey(page int) cache.Key { return cache.NewKey(KeyMovies, KeyPopular, page) }
func searchKey(q string, page int) cache.Key { return cache.NewKey(KeySearch, q, page) }
func movieKey(id int) cache.Key { return cache.NewKey(KeyMovie, id) }
func creditsKey(id int) cache.Key { return cache.NewKey(KeyCredits, id) }
func trailerKey(id int) cache.Key { return cache.NewKey(KeyTrailer, id) }
func imagesKey(id int) cache.Key { return cache.NewKey(KeyImages, id) }
func genresKey() cache.Key { return cache.NewKey(KeyGenres) }

// Trending returns the first limit trending movies (DefaultTrendingLimit when limit <= 0).
func (s *Service) Trending(ctx context.Context, limit int) ([]model.Movie, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	page, err := value(cache.Get(ctx, s.cache, trendingKey(), s.fetchTrending))
	if err != nil {
		return nil, err
	}
	return slices.Clone(page.Results[:min(limit, len(page.Results))]), nil
}

// RefreshTrending refetches the trending list regardless of its freshness and
// returns its first limit movies.
func (s *Service) RefreshTrending(ctx context.Context, limit int) ([]model.Movie, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	page, err := value(cache.Refetch(ctx, s.cache, trendingKey(), s.fetchTrending))
	if err != nil {
		return nil, err
	}
	return slices.Clone(page.Results[:min(limit, len(page.Results))]), nil
}

// NowPlaying returns one page of new releases.
func (s *Service) NowPlaying(ctx context.Context, page int) (model.MoviePage, error) {
	page = max(page, 1)
	return value(cache.Get(ctx, s.cache, nowPlayingKey(page), s.fetchNowPlaying(page), nowPlayingOpts...))
}

// Popular returns one page of popular movies. It shares the new-release freshness.
func (s *Service) Popular(ctx context.Context, page int) (model.MoviePage, error) {
	page = max(page, 1)
	return value(cache.Get(ctx, s.cache, popularKey(page), s.fetchPopular(page), nowPlayingOpts...))
}

// Search returns one page of results. A query without letters or digits is not
// sent and yields an empty page.
func (s *Service) Search(ctx context.Context, query string, page int) (model.MoviePage, error) {
	page = max(page, 1)
	res := cache.Get(ctx, s.cache, searchKey(query, page), s.fetchSearch(query, page),
		cache.WithEnabled(Searchable(query)), cache.WithStaleTime(searchStale))
	if !Searchable(query) && !res.HasData {
		return model.MoviePage{Page: page, Results: []model.Movie{}}, nil
	}
	return value(res)
}

// Details returns the movie record. A movie the provider does not know is not kept
// in the cache, so a later lookup asks again.
func (s *Service) Details(ctx context.Context, id int) (model.Movie, error) {
	m, err := value(cache.Get(ctx, s.cache, movieKey(id), s.fetchDetails(id), detailsOpts...))
	if errdefs.IsNotFound(err) {
		s.cache.Remove(movieKey(id))
	}
	return m, err
}

// Credits returns the first TopCredits cast and crew members.
func (s *Service) Credits(ctx context.Context, id int) (model.Credits, error) {
	return value(cache.Get(ctx, s.cache, creditsKey(id), s.fetchCredits(id)))
}

// Trailer returns the YouTube key of the movie trailer, "" when there is none.
func (s *Service) Trailer(ctx context.Context, id int) (string, error) {
	return value(cache.Get(ctx, s.cache, trailerKey(id), s.fetchTrailer(id)))
}

// Images returns the posters, backdrops and logos of a movie.
func (s *Service) Images(ctx context.Context, id int) (model.Images, error) {
	return value(cache.Get(ctx, s.cache, imagesKey(id), s.fetchImages(id), detailsOpts...))
}

// Genres returns the full genre list.
func (s *Service) Genres(ctx context.Context) ([]model.Genre, error) {
	return value(cache.Get(ctx, s.cache, genresKey(), s.fetchGenres))
}

// Detail loads details, credits, trailer and genres concurrently and waits for all
// of them. The first error wins.
func (s *Service) Detail(ctx context.Context, id int) (Detail, error) {
	var (
		g       errgroup.Group
		movie   model.Movie
		credits model.Credits
		trailer string
		genres  []model.Genre
	)
	g.Go(func() (err error) { movie, err = s.Details(ctx, id); return })
	g.Go(func() (err error) { credits, err = s.Credits(ctx, id); return })
	g.Go(func() (err error) { trailer, err = s.Trailer(ctx, id); return })
	g.Go(func() (err error) { genres, err = s.Genres(ctx); return })
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	d := Detail{
		Movie:      movie,
		TrailerKey: trailer,
		Cast:       credits.Cast,
		Crew:       credits.Crew,
		Genres:     model.GenreNames(movie, genres),
		Released:   model.FormatReleaseDate(movie.ReleaseDate),
	}
	if movie.Runtime != nil {
		d.Runtime = model.FormatRuntime(*movie.Runtime)
	}
	if d.Cast == nil {
		d.Cast = []model.CastMember{}
	}
	if d.Crew == nil {
		d.Crew = []model.CrewMember{}
	}
	return d, nil
}

// NewReleasesFeed returns an aggregator over the cached new-release pages.
func (s *Service) NewReleasesFeed() *pagination.Aggregator[model.Movie] {
	return pagination.New(s.NowPlaying, model.MovieID, 1)
}

// SearchFeed returns an aggregator over the cached search pages of query.
func (s *Service) SearchFeed(query string) *pagination.Aggregator[model.Movie] {
	return pagination.New(func(ctx context.Context, page int) (model.MoviePage, error) {
		return s.Search(ctx, query, page)
	}, model.MovieID, 1)
}

// Home loads the trending head and the first new-release page concurrently.
func (s *Service) Home(ctx context.Context) (Home, error) {
	var (
		g        errgroup.Group
		trending []model.Movie
	)
	feed := s.NewReleasesFeed()
	g.Go(func() (err error) { trending, err = s.Trending(ctx, DefaultTrendingLimit); return })
	g.Go(func() error { _, err := feed.LoadMore(ctx); return err })
	if err := g.Wait(); err != nil {
		return Home{}, err
	}
	return Home{Trending: trending, NewReleases: feed.Items(), HasMore: feed.HasMore()}, nil
}

// PrefetchTrending warms the trending list in the background.
func (s *Service) PrefetchTrending(ctx context.Context) {
	cache.Prefetch(ctx, s.cache, trendingKey(), s.fetchTrending)
}

// PrefetchNowPlaying warms one new-release page in the background.
func (s *Service) PrefetchNowPlaying(ctx context.Context, page int) {
	page = max(page, 1)
	cache.Prefetch(ctx, s.cache, nowPlayingKey(page), s.fetchNowPlaying(page), nowPlayingOpts...)
}

// PrefetchGenres warms the genre list in the background.
func (s *Service) PrefetchGenres(ctx context.Context) {
	cache.Prefetch(ctx, s.cache, genresKey(), s.fetchGenres)
}

// PrefetchDetails warms everything Detail reads for id, e.g. when a card is hovered.
func (s *Service) PrefetchDetails(ctx context.Context, id int) {
	cache.Prefetch(ctx, s.cache, movieKey(id), s.fetchDetails(id), detailsOpts...)
	cache.Prefetch(ctx, s.cache, creditsKey(id), s.fetchCredits(id))
	cache.Prefetch(ctx, s.cache, trailerKey(id), s.fetchTrailer(id))
	cache.Prefetch(ctx, s.cache, genresKey(), s.fetchGenres)
}

// Invalidate marks every cached entry under the given key prefix stale.
func (s *Service) Invalidate(prefix ...any) int {
	n := s.cache.Invalidate(cache.NewKey(prefix...))
	s.log.WithField("prefix", cache.NewKey(prefix...).String()).Infof("%d cache entries invalidated", n)
	return n
}

// Purge drops every cached entry and returns how many there were.
func (s *Service) Purge() int {
	n := s.cache.Len()
	s.cache.Clear()
	s.log.Infof("cache purged, %d entries dropped", n)
	return n
}

func (s *Service) fetchTrending(ctx context.Context) (model.MoviePage, error) {
	p, err := s.api.Trending(ctx)
	if err != nil {
		return model.MoviePage{}, err
	}
	return *p, nil
}

func (s *Service) fetchNowPlaying(page int) cache.FetchFunc[model.MoviePage] {
	return func(ctx context.Context) (model.MoviePage, error) {
		p, err := s.api.NowPlaying(ctx, page)
		if err != nil {
			return model.MoviePage{}, err
		}
		return *p, nil
	}
}

func (s *Service) fetchPopular(page int) cache.FetchFunc[model.MoviePage] {
	return func(ctx context.Context) (model.MoviePage, error) {
		p, err := s.api.Popular(ctx, page)
		if err != nil {
			return model.MoviePage{}, err
		}
		return *p, nil
	}
}

func (s *Service) fetchSearch(query string, page int) cache.FetchFunc[model.MoviePage] {
	return func(ctx context.Context) (model.MoviePage, error) {
		p, err := s.api.Search(ctx, query, page)
		if err != nil {
			return model.MoviePage{}, err
		}
		return *p, nil
	}
}

func (s *Service) fetchDetails(id int) cache.FetchFunc[model.Movie] {
	return func(ctx context.Context) (model.Movie, error) {
		m, err := s.api.MovieDetails(ctx, id)
		if err != nil {
			return model.Movie{}, err
		}
		return *m, nil
	}
}

func (s *Service) fetchCredits(id int) cache.FetchFunc[model.Credits] {
	return func(ctx context.Context) (model.Credits, error) {
		c, err := s.api.Credits(ctx, id)
		if err != nil {
			return model.Credits{}, err
		}
		return c.Top(TopCredits), nil
	}
}

func (s *Service) fetchTrailer(id int) cache.FetchFunc[string] {
	return func(ctx context.Context) (string, error) {
		return s.api.Trailer(ctx, id)
	}
}

func (s *Service) fetchImages(id int) cache.FetchFunc[model.Images] {
	return func(ctx context.Context) (model.Images, error) {
		img, err := s.api.Images(ctx, id)
		if err != nil {
			return model.Images{}, err
		}
		return *img, nil
	}
}

func (s *Service) fetchGenres(ctx context.Context) ([]model.Genre, error) {
	return s.api.Genres(ctx)
}

// value turns a cache result into a plain return. Data from an earlier success is
// preferred over the error of a later failed refetch.
func value[T any](res cache.Result[T]) (T, error) {
	if res.HasData {
		return res.Data, nil
	}
	if res.Err != nil {
		var zero T
		return zero, res.Err
	}
	return res.Data, nil
}
