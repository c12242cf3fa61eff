package model

import (
	"fmt"
	"time"
)

// Genre is a TMDB genre record.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the body of /genre/movie/list.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Movie is the movie record shared by list, detail and favorites payloads.
// Detail responses fill Runtime, Genres and Tagline; list responses fill GenreIDs.
type Movie struct {
	ID           int     `json:"id" validate:"required,gt=0"`
	Title        string  `json:"title" validate:"required"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average" validate:"gte=0,lte=10"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	Runtime      *int    `json:"runtime,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
	Tagline      string  `json:"tagline,omitempty"`
	TrailerKey   string  `json:"trailer_key,omitempty"`
}

// MovieID returns the identity of m. It is the id function used for de-duplication.
func MovieID(m Movie) int {
	return m.ID
}

// GenreNames resolves the genre names of a movie.
// Embedded genre records win; otherwise genre ids are looked up in all and unknown ids are dropped.
func GenreNames(m Movie, all []Genre) []string {
	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		return names
	}

	if len(m.GenreIDs) == 0 {
		return []string{}
	}

	byID := make(map[int]string, len(all))
	for _, g := range all {
		byID[g.ID] = g.Name
	}
	names := make([]string, 0, len(m.GenreIDs))
	for _, id := range m.GenreIDs {
		if name, ok := byID[id]; ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// FormatRuntime renders a runtime in minutes as "2h 5m".
func FormatRuntime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatReleaseDate renders an ISO date (YYYY-MM-DD) as "17 January 2026".
// Input that does not parse is returned unchanged.
func FormatReleaseDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d %s %d", t.Day(), t.Month().String(), t.Year())
}
