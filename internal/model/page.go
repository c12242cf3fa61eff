package model

// Page is one page of a paginated TMDB list endpoint.
type Page[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// MoviePage is the body of the movie list and search endpoints.
type MoviePage = Page[Movie]

// HasMore reports whether a page after this one exists.
func (p Page[T]) HasMore() bool {
	return p.Page < p.TotalPages
}
