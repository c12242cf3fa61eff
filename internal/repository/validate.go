package repository

import (
	"fmt"

	"github.com/bassista/go_flix/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateMovies(movies []model.Movie) error {
	for i := range movies {
		if err := validate.Struct(&movies[i]); err != nil {
			return fmt.Errorf("movie at index %d: %w", i, err)
		}
	}
	return nil
}

// normalize turns a nil list into an empty one so the stored document is always an array.
func normalize(movies []model.Movie) []model.Movie {
	if movies == nil {
		return []model.Movie{}
	}
	return movies
}
