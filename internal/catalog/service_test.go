package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bassista/go_flix/internal/cache"
	"github.com/bassista/go_flix/internal/model"
	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Trending(ctx context.Context) (*model.MoviePage, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*model.MoviePage)
	return p, args.Error(1)
}

func (m *MockAPI) NowPlaying(ctx context.Context, page int) (*model.MoviePage, error) {
	args := m.Called(ctx, page)
	p, _ := args.Get(0).(*model.MoviePage)
	return p, args.Error(1)
}

func (m *MockAPI) Popular(ctx context.Context, page int) (*model.MoviePage, error) {
	args := m.Called(ctx, page)
	p, _ := args.Get(0).(*model.MoviePage)
	return p, args.Error(1)
}

func (m *MockAPI) Images(ctx context.Context, id int) (*model.Images, error) {
	args := m.Called(ctx, id)
	img, _ := args.Get(0).(*model.Images)
	return img, args.Error(1)
}

func (m *MockAPI) Search(ctx context.Context, query string, page int) (*model.MoviePage, error) {
	args := m.Called(ctx, query, page)
	p, _ := args.Get(0).(*model.MoviePage)
	return p, args.Error(1)
}

func (m *MockAPI) MovieDetails(ctx context.Context, id int) (*model.Movie, error) {
	args := m.Called(ctx, id)
	mv, _ := args.Get(0).(*model.Movie)
	return mv, args.Error(1)
}

func (m *MockAPI) Credits(ctx context.Context, id int) (*model.Credits, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Credits)
	return c, args.Error(1)
}

func (m *MockAPI) Trailer(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) Genres(ctx context.Context) ([]model.Genre, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).([]model.Genre)
	return g, args.Error(1)
}

func newTestService(t *testing.T) (*Service, *MockAPI, *cache.QueryCache) {
	t.Helper()
	api := new(MockAPI)
	qc := cache.NewQueryCache(cache.Config{})
	svc, err := NewService(api, qc)
	require.NoError(t, err)
	return svc, api, qc
}

func moviesFrom(from, n int) []model.Movie {
	out := make([]model.Movie, n)
	for i := range out {
		out[i] = model.Movie{ID: from + i, Title: "m"}
	}
	return out
}

func ids(ms []model.Movie) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, cache.NewQueryCache(cache.Config{}))
	assert.Error(t, err)
	_, err = NewService(new(MockAPI), nil)
	assert.Error(t, err)
}

func TestSearchable(t *testing.T) {
	assert.True(t, Searchable("alien"))
	assert.True(t, Searchable("  9 "))
	assert.False(t, Searchable(""))
	assert.False(t, Searchable("?!  "))
}

func TestTrending_LimitsAndCaches(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("Trending", mock.Anything).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 20), TotalPages: 1}, nil).Once()
	ctx := context.Background()

	top, err := svc.Trending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, DefaultTrendingLimit)

	top3, err := svc.Trending(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(top3))

	all, err := svc.Trending(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	api.AssertNumberOfCalls(t, "Trending", 1)
	assert.True(t, cache.Peek[model.MoviePage](qc, cache.NewKey("trendingMovies")).HasData)
}

func TestNowPlaying_CacheKeyPerPage(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("NowPlaying", mock.Anything, 1).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 2), TotalPages: 3}, nil).Once()
	api.On("NowPlaying", mock.Anything, 2).Return(&model.MoviePage{Page: 2, Results: moviesFrom(3, 2), TotalPages: 3}, nil).Once()
	ctx := context.Background()

	p1, err := svc.NowPlaying(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Page)
	_, err = svc.NowPlaying(ctx, 2)
	require.NoError(t, err)
	_, err = svc.NowPlaying(ctx, 1)
	require.NoError(t, err)

	api.AssertExpectations(t)
	assert.True(t, cache.Peek[model.MoviePage](qc, cache.NewKey("movies", "now_playing", 2)).HasData)
}

func TestSearch_NotSearchableSkipsRemote(t *testing.T) {
	svc, api, _ := newTestService(t)

	page, err := svc.Search(context.Background(), "  ?? ", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	api.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_Caches(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("Search", mock.Anything, "alien", 1).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 1), TotalPages: 1}, nil).Once()

	for i := 0; i < 2; i++ {
		page, err := svc.Search(context.Background(), "alien", 1)
		require.NoError(t, err)
		assert.Len(t, page.Results, 1)
	}
	api.AssertExpectations(t)
	assert.Equal(t, "searchMovies:alien:1", cache.NewKey(KeySearch, "alien", 1).String())
	assert.True(t, cache.Peek[model.MoviePage](qc, cache.NewKey(KeySearch, "alien", 1)).HasData)
}

func TestCredits_KeepsTopFive(t *testing.T) {
	svc, api, _ := newTestService(t)
	cast := make([]model.CastMember, 8)
	crew := make([]model.CrewMember, 3)
	for i := range cast {
		cast[i] = model.CastMember{ID: i + 1}
	}
	api.On("Credits", mock.Anything, 42).Return(&model.Credits{ID: 42, Cast: cast, Crew: crew}, nil)

	c, err := svc.Credits(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, c.Cast, TopCredits)
	assert.Len(t, c.Crew, 3)
	assert.Equal(t, 1, c.Cast[0].ID)
}

func TestDetail_CombinesAllParts(t *testing.T) {
	svc, api, _ := newTestService(t)
	runtime := 125
	api.On("MovieDetails", mock.Anything, 7).Return(&model.Movie{
		ID: 7, Title: "Se7en", ReleaseDate: "1995-09-22", Runtime: &runtime, GenreIDs: []int{80, 53},
	}, nil)
	api.On("Credits", mock.Anything, 7).Return(&model.Credits{ID: 7, Cast: []model.CastMember{{ID: 1, Name: "Brad Pitt"}}}, nil)
	api.On("Trailer", mock.Anything, 7).Return("abc123", nil)
	api.On("Genres", mock.Anything).Return([]model.Genre{{ID: 80, Name: "Crime"}, {ID: 53, Name: "Thriller"}}, nil)

	d, err := svc.Detail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Se7en", d.Movie.Title)
	assert.Equal(t, "abc123", d.TrailerKey)
	assert.Equal(t, []string{"Crime", "Thriller"}, d.Genres)
	assert.Equal(t, "2h 5m", d.Runtime)
	assert.Equal(t, "22 September 1995", d.Released)
	assert.Len(t, d.Cast, 1)
	assert.NotNil(t, d.Crew)
}

func TestDetail_WaitsForAllAndReturnsError(t *testing.T) {
	svc, api, qc := newTestService(t)
	boom := errors.New("credits down")
	api.On("MovieDetails", mock.Anything, 9).Return(&model.Movie{ID: 9, Title: "Nine"}, nil)
	api.On("Credits", mock.Anything, 9).Return(nil, boom)
	api.On("Trailer", mock.Anything, 9).Return("", nil)
	api.On("Genres", mock.Anything).Return([]model.Genre{}, nil)

	_, err := svc.Detail(context.Background(), 9)
	assert.ErrorIs(t, err, boom)

	// the siblings still completed and were cached
	assert.True(t, cache.Peek[model.Movie](qc, cache.NewKey(KeyMovie, 9)).HasData)
	assert.True(t, cache.Peek[[]model.Genre](qc, cache.NewKey(KeyGenres)).HasData)
}

func TestNewReleasesFeed_AggregatesThroughCache(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.On("NowPlaying", mock.Anything, 1).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 3), TotalPages: 3}, nil).Once()
	api.On("NowPlaying", mock.Anything, 2).Return(&model.MoviePage{Page: 2, Results: append(moviesFrom(3, 1), moviesFrom(4, 2)...), TotalPages: 3}, nil).Once()
	ctx := context.Background()

	feed := svc.NewReleasesFeed()
	_, err := feed.LoadMore(ctx)
	require.NoError(t, err)
	_, err = feed.LoadMore(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(feed.Items()))
	assert.True(t, feed.HasMore())

	// a second feed reuses the cached pages
	again := svc.NewReleasesFeed()
	_, _ = again.LoadMore(ctx)
	api.AssertNumberOfCalls(t, "NowPlaying", 2)
}

func TestSearchFeed(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.On("Search", mock.Anything, "matrix", 1).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 2), TotalPages: 1, TotalResults: 2}, nil)

	feed := svc.SearchFeed("matrix")
	_, err := feed.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, feed.TotalResults())
	assert.False(t, feed.HasMore())
}

func TestHome(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.On("Trending", mock.Anything).Return(&model.MoviePage{Page: 1, Results: moviesFrom(100, 15), TotalPages: 1}, nil)
	api.On("NowPlaying", mock.Anything, 1).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 4), TotalPages: 2}, nil)

	home, err := svc.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, home.Trending, 10)
	assert.Len(t, home.NewReleases, 4)
	assert.True(t, home.HasMore)
}

func TestHome_Error(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.On("Trending", mock.Anything).Return(nil, errors.New("down"))
	api.On("NowPlaying", mock.Anything, 1).Return(&model.MoviePage{Page: 1, TotalPages: 1}, nil)

	_, err := svc.Home(context.Background())
	assert.EqualError(t, err, "down")
}

func TestPrefetchDetails_WarmsCache(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("MovieDetails", mock.Anything, 3).Return(&model.Movie{ID: 3, Title: "Three"}, nil)
	api.On("Credits", mock.Anything, 3).Return(&model.Credits{ID: 3}, nil)
	api.On("Trailer", mock.Anything, 3).Return("", nil)
	api.On("Genres", mock.Anything).Return([]model.Genre{}, nil)

	svc.PrefetchDetails(context.Background(), 3)

	assert.Eventually(t, func() bool {
		return cache.Peek[model.Movie](qc, cache.NewKey(KeyMovie, 3)).HasData &&
			cache.Peek[model.Credits](qc, cache.NewKey(KeyCredits, 3)).HasData &&
			cache.Peek[string](qc, cache.NewKey(KeyTrailer, 3)).HasData &&
			cache.Peek[[]model.Genre](qc, cache.NewKey(KeyGenres)).HasData
	}, time.Second, 5*time.Millisecond)
}

func TestPrefetchNowPlaying(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("NowPlaying", mock.Anything, 2).Return(&model.MoviePage{Page: 2, TotalPages: 3}, nil)

	svc.PrefetchNowPlaying(context.Background(), 2)

	assert.Eventually(t, func() bool {
		return cache.Peek[model.MoviePage](qc, cache.NewKey(KeyMovies, KeyNowPlaying, 2)).HasData
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidate(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("NowPlaying", mock.Anything, 1).Return(&model.MoviePage{Page: 1, TotalPages: 1}, nil)
	api.On("NowPlaying", mock.Anything, 2).Return(&model.MoviePage{Page: 2, TotalPages: 2}, nil)
	api.On("Genres", mock.Anything).Return([]model.Genre{}, nil)
	ctx := context.Background()
	_, _ = svc.NowPlaying(ctx, 1)
	_, _ = svc.NowPlaying(ctx, 2)
	_, _ = svc.Genres(ctx)

	assert.Equal(t, 2, svc.Invalidate(KeyMovies, KeyNowPlaying))
	assert.True(t, cache.Peek[model.MoviePage](qc, cache.NewKey(KeyMovies, KeyNowPlaying, 1)).IsStale)
	assert.False(t, cache.Peek[[]model.Genre](qc, cache.NewKey(KeyGenres)).IsStale)
}

func TestPopular_CacheKeyPerPage(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("Popular", mock.Anything, 1).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 2), TotalPages: 4}, nil).Once()
	ctx := context.Background()

	p, err := svc.Popular(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(p.Results))
	_, err = svc.Popular(ctx, 1)
	require.NoError(t, err)

	api.AssertExpectations(t)
	assert.True(t, cache.Peek[model.MoviePage](qc, cache.NewKey(KeyMovies, KeyPopular, 1)).HasData)
	assert.False(t, cache.Peek[model.MoviePage](qc, cache.NewKey(KeyMovies, KeyNowPlaying, 1)).HasData)
}

func TestImages_CachesPerMovie(t *testing.T) {
	svc, api, qc := newTestService(t)
	images := &model.Images{ID: 7, Posters: []model.ImageData{{FilePath: "/p.jpg", Width: 500}}}
	api.On("Images", mock.Anything, 7).Return(images, nil).Once()
	ctx := context.Background()

	got, err := svc.Images(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, *images, got)
	_, err = svc.Images(ctx, 7)
	require.NoError(t, err)

	api.AssertNumberOfCalls(t, "Images", 1)
	assert.True(t, cache.Peek[model.Images](qc, cache.NewKey(KeyImages, 7)).HasData)
}

func TestImages_Error(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.On("Images", mock.Anything, 9).Return(nil, errors.New("boom"))

	_, err := svc.Images(context.Background(), 9)
	assert.EqualError(t, err, "boom")
}

func TestPurge(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("Genres", mock.Anything).Return([]model.Genre{{ID: 1, Name: "Action"}}, nil).Twice()
	ctx := context.Background()
	_, _ = svc.Genres(ctx)

	assert.Equal(t, 1, svc.Purge())
	assert.Equal(t, 0, qc.Len())

	_, err := svc.Genres(ctx)
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "Genres", 2)
}

func TestRefreshTrending_BypassesFreshData(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.On("Trending", mock.Anything).Return(&model.MoviePage{Page: 1, Results: moviesFrom(1, 3), TotalPages: 1}, nil).Once()
	api.On("Trending", mock.Anything).Return(&model.MoviePage{Page: 1, Results: moviesFrom(10, 3), TotalPages: 1}, nil).Once()
	ctx := context.Background()

	first, err := svc.Trending(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(first))

	fresh, err := svc.RefreshTrending(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11}, ids(fresh))

	cached, err := svc.Trending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, ids(cached))
	api.AssertNumberOfCalls(t, "Trending", 2)
}

func TestDetails_NotFoundIsNotCached(t *testing.T) {
	svc, api, qc := newTestService(t)
	api.On("MovieDetails", mock.Anything, 404).Return(nil, errdefs.ErrNotFound).Twice()
	ctx := context.Background()

	_, err := svc.Details(ctx, 404)
	assert.True(t, errdefs.IsNotFound(err))
	assert.False(t, cache.Peek[model.Movie](qc, cache.NewKey(KeyMovie, 404)).HasData)
	assert.Equal(t, 0, qc.Len())

	_, err = svc.Details(ctx, 404)
	assert.True(t, errdefs.IsNotFound(err))
	api.AssertNumberOfCalls(t, "MovieDetails", 2)
}
