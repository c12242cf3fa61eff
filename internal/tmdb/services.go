package tmdb

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/bassista/go_flix/internal/model"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("search query cannot be empty")

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return params
}

// Trending returns today's trending movies.
func (c *Client) Trending(ctx context.Context) (*model.MoviePage, error) {
	var page model.MoviePage
	if err := c.Request(ctx, EndpointTrending, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Popular returns one page of popular movies.
func (c *Client) Popular(ctx context.Context, page int) (*model.MoviePage, error) {
	var out model.MoviePage
	if err := c.Request(ctx, EndpointPopular, pageParams(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NowPlaying returns one page of new releases.
func (c *Client) NowPlaying(ctx context.Context, page int) (*model.MoviePage, error) {
	var out model.MoviePage
	if err := c.Request(ctx, EndpointNowPlaying, pageParams(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search returns one page of movies matching query. Adult titles are excluded.
func (c *Client) Search(ctx context.Context, query string, page int) (*model.MoviePage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")

	var out model.MoviePage
	if err := c.Request(ctx, EndpointSearch, params, &out); err != nil {
		c.log.WithError(err).WithField("query", query).Error("Error searching movies")
		return nil, err
	}
	return &out, nil
}

// MovieDetails returns the detail record of a movie.
func (c *Client) MovieDetails(ctx context.Context, id int) (*model.Movie, error) {
	var out model.Movie
	if err := c.Request(ctx, detailsEndpoint(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Credits returns the full cast and crew of a movie.
func (c *Client) Credits(ctx context.Context, id int) (*model.Credits, error) {
	var out model.Credits
	if err := c.Request(ctx, creditsEndpoint(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Videos returns the videos attached to a movie.
func (c *Client) Videos(ctx context.Context, id int) (*model.VideoList, error) {
	var out model.VideoList
	if err := c.Request(ctx, videosEndpoint(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trailer returns the YouTube key of the movie's trailer.
// A movie without trailer, or unknown to the provider, yields "" and no error.
func (c *Client) Trailer(ctx context.Context, id int) (string, error) {
	videos, err := c.Videos(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return videos.TrailerKey(), nil
}

// Images returns the posters, backdrops and logos of a movie.
func (c *Client) Images(ctx context.Context, id int) (*model.Images, error) {
	var out model.Images
	if err := c.Request(ctx, imagesEndpoint(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Genres returns the movie genre list.
func (c *Client) Genres(ctx context.Context) ([]model.Genre, error) {
	var out model.GenreList
	if err := c.Request(ctx, EndpointGenres, nil, &out); err != nil {
		return nil, err
	}
	if out.Genres == nil {
		out.Genres = []model.Genre{}
	}
	return out.Genres, nil
}
