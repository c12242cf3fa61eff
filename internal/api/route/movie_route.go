package route

import (
	"github.com/bassista/go_flix/internal/api/controller"
	"github.com/gin-gonic/gin"
)

func NewMovieRouter(group *gin.RouterGroup, mc *controller.MovieController) {
	group.GET("home", mc.Home)
	group.GET("genres", mc.Genres)
	group.DELETE("cache", mc.Invalidate)

	movies := group.Group("movies")
	movies.GET("trending", mc.Trending)
	movies.GET("now_playing", mc.NowPlaying)
	movies.GET("popular", mc.Popular)
	movies.GET("search", mc.Search)
	movies.GET("feed/now_playing", mc.NowPlayingFeed)
	movies.GET("feed/search", mc.SearchFeed)
	movies.GET(":id", mc.Detail)
	movies.GET(":id/images", mc.Images)
	movies.POST(":id/prefetch", mc.Prefetch)
}
