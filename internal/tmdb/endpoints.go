package tmdb

import "fmt"

const (
	EndpointPopular    = "/movie/popular"
	EndpointTrending   = "/trending/movie/day"
	EndpointNowPlaying = "/movie/now_playing"
	EndpointSearch     = "/search/movie"
	EndpointGenres     = "/genre/movie/list"
)

func detailsEndpoint(id int) string { return fmt.Sprintf("/movie/%d", id) }
func creditsEndpoint(id int) string { return fmt.Sprintf("/movie/%d/credits", id) }
func videosEndpoint(id int) string  { return fmt.Sprintf("/movie/%d/videos", id) }
func imagesEndpoint(id int) string  { return fmt.Sprintf("/movie/%d/images", id) }
