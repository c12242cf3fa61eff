package route

import (
	"net/http"

	"github.com/bassista/go_flix/internal/api/controller"
	"github.com/bassista/go_flix/internal/app"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, appCtx *app.App) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":       "UP",
			"cache_entries": appCtx.Cache.Len(),
			"warmup_ticks":  appCtx.Warmup.Ticks(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	publicRouter := r.Group("")

	mc := controller.NewMovieController(appCtx.Catalog, appCtx.Client)
	NewMovieRouter(publicRouter, mc)
	NewFavoritesRouter(publicRouter, controller.NewFavoritesController(appCtx.Favorites, mc))
	NewNotificationRouter(publicRouter, controller.NewNotificationController(appCtx.Notices))
}
