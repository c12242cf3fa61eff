package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bassista/go_flix/internal/cache"
	"github.com/bassista/go_flix/internal/catalog"
	"github.com/bassista/go_flix/internal/favorites"
	"github.com/bassista/go_flix/internal/model"
	"github.com/bassista/go_flix/internal/notify"
	"github.com/bassista/go_flix/internal/repository"
	"github.com/bassista/go_flix/internal/tmdb"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAPI serves canned provider data. errs overrides the result of a method by name.
type stubAPI struct {
	mu     sync.Mutex
	pages  map[int]model.MoviePage
	search map[string]model.MoviePage
	movies map[int]model.Movie
	errs   map[string]error
	calls  map[string]int
}

func newStubAPI() *stubAPI {
	poster := "/poster.jpg"
	return &stubAPI{
		pages: map[int]model.MoviePage{
			1: {Page: 1, Results: []model.Movie{{ID: 1, Title: "One", PosterPath: &poster}, {ID: 2, Title: "Two"}}, TotalPages: 2, TotalResults: 3},
			2: {Page: 2, Results: []model.Movie{{ID: 2, Title: "Two"}, {ID: 3, Title: "Three"}}, TotalPages: 2, TotalResults: 3},
		},
		search: map[string]model.MoviePage{
			"alien": {Page: 1, Results: []model.Movie{{ID: 348, Title: "Alien"}}, TotalPages: 1, TotalResults: 1},
		},
		movies: map[int]model.Movie{
			7: {ID: 7, Title: "Se7en", ReleaseDate: "1995-09-22", GenreIDs: []int{80}},
		},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (s *stubAPI) hit(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	return s.errs[name]
}

func (s *stubAPI) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubAPI) Trending(ctx context.Context) (*model.MoviePage, error) {
	if err := s.hit("Trending"); err != nil {
		return nil, err
	}
	results := make([]model.Movie, 12)
	for i := range results {
		results[i] = model.Movie{ID: 100 + i, Title: fmt.Sprintf("T%d", i)}
	}
	return &model.MoviePage{Page: 1, Results: results, TotalPages: 1}, nil
}

func (s *stubAPI) NowPlaying(ctx context.Context, page int) (*model.MoviePage, error) {
	if err := s.hit("NowPlaying"); err != nil {
		return nil, err
	}
	p, ok := s.pages[page]
	if !ok {
		return nil, &tmdb.Error{Kind: tmdb.KindNotFound, StatusCode: http.StatusNotFound}
	}
	return &p, nil
}

func (s *stubAPI) Popular(ctx context.Context, page int) (*model.MoviePage, error) {
	if err := s.hit("Popular"); err != nil {
		return nil, err
	}
	return &model.MoviePage{Page: page, Results: []model.Movie{{ID: 550, Title: "Fight Club"}}, TotalPages: 3, TotalResults: 3}, nil
}

func (s *stubAPI) Images(ctx context.Context, id int) (*model.Images, error) {
	if err := s.hit("Images"); err != nil {
		return nil, err
	}
	if _, ok := s.movies[id]; !ok {
		return nil, &tmdb.Error{Kind: tmdb.KindNotFound, StatusCode: http.StatusNotFound}
	}
	return &model.Images{
		ID:        id,
		Backdrops: []model.ImageData{{FilePath: "/backdrop.jpg", Width: 1280, Height: 720}},
		Posters:   []model.ImageData{{FilePath: "/poster.jpg", Width: 500, Height: 750}},
	}, nil
}

func (s *stubAPI) Search(ctx context.Context, query string, page int) (*model.MoviePage, error) {
	if err := s.hit("Search"); err != nil {
		return nil, err
	}
	p := s.search[query]
	p.Page = page
	return &p, nil
}

func (s *stubAPI) MovieDetails(ctx context.Context, id int) (*model.Movie, error) {
	if err := s.hit("MovieDetails"); err != nil {
		return nil, err
	}
	m, ok := s.movies[id]
	if !ok {
		return nil, &tmdb.Error{Kind: tmdb.KindNotFound, StatusCode: http.StatusNotFound}
	}
	return &m, nil
}

func (s *stubAPI) Credits(ctx context.Context, id int) (*model.Credits, error) {
	if err := s.hit("Credits"); err != nil {
		return nil, err
	}
	return &model.Credits{ID: id, Cast: []model.CastMember{{ID: 1, Name: "Brad Pitt"}}}, nil
}

func (s *stubAPI) Trailer(ctx context.Context, id int) (string, error) {
	if err := s.hit("Trailer"); err != nil {
		return "", err
	}
	return "yt-key", nil
}

func (s *stubAPI) Genres(ctx context.Context) ([]model.Genre, error) {
	if err := s.hit("Genres"); err != nil {
		return nil, err
	}
	return []model.Genre{{ID: 80, Name: "Crime"}}, nil
}

type testEnv struct {
	router   *gin.Engine
	api      *stubAPI
	repo     *repository.JSONRepository
	recorder *notify.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := newStubAPI()
	svc, err := catalog.NewService(api, cache.NewQueryCache(cache.Config{}))
	require.NoError(t, err)
	images, err := tmdb.NewClient(tmdb.ClientConfig{APIKey: "test"})
	require.NoError(t, err)
	repo, err := repository.NewJSONRepository(filepath.Join(t.TempDir(), "favorites.json"))
	require.NoError(t, err)
	store, err := favorites.NewStore(repo)
	require.NoError(t, err)
	rec := notify.NewRecorder(10)

	mc := NewMovieController(svc, images)
	fc := NewFavoritesController(store, mc)
	nc := NewNotificationController(rec)

	r := gin.New()
	r.GET("/home", mc.Home)
	r.GET("/movies/trending", mc.Trending)
	r.GET("/movies/now_playing", mc.NowPlaying)
	r.GET("/movies/popular", mc.Popular)
	r.GET("/movies/search", mc.Search)
	r.GET("/movies/feed/now_playing", mc.NowPlayingFeed)
	r.GET("/movies/feed/search", mc.SearchFeed)
	r.GET("/movies/:id", mc.Detail)
	r.GET("/movies/:id/images", mc.Images)
	r.POST("/movies/:id/prefetch", mc.Prefetch)
	r.GET("/genres", mc.Genres)
	r.DELETE("/cache", mc.Invalidate)
	r.GET("/favorites", fc.List)
	r.GET("/favorites/:id", fc.Status)
	r.POST("/favorites", fc.Add)
	r.POST("/favorites/toggle", fc.Toggle)
	r.POST("/favorites/reload", fc.Reload)
	r.DELETE("/favorites/:id", fc.Remove)
	r.GET("/notifications", nc.Recent)

	return &testEnv{router: r, api: api, repo: repo, recorder: rec}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
