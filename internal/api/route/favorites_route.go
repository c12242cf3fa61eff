package route

import (
	"github.com/bassista/go_flix/internal/api/controller"
	"github.com/gin-gonic/gin"
)

func NewFavoritesRouter(group *gin.RouterGroup, fc *controller.FavoritesController) {
	favorites := group.Group("favorites")
	favorites.GET("", fc.List)
	favorites.POST("", fc.Add)
	favorites.POST("toggle", fc.Toggle)
	favorites.POST("reload", fc.Reload)
	favorites.GET(":id", fc.Status)
	favorites.DELETE(":id", fc.Remove)
}

func NewNotificationRouter(group *gin.RouterGroup, nc *controller.NotificationController) {
	group.GET("notifications", nc.Recent)
}
