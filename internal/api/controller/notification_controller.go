package controller

import (
	"net/http"

	"github.com/bassista/go_flix/internal/notify"
	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	recorder *notify.Recorder
}

func NewNotificationController(r *notify.Recorder) *NotificationController {
	return &NotificationController{recorder: r}
}

// Recent handles GET /notifications. With ?drain=true the returned notices are forgotten.
func (nc *NotificationController) Recent(c *gin.Context) {
	var notices []notify.Notice
	if c.Query("drain") == "true" {
		notices = nc.recorder.Drain()
	} else {
		notices = nc.recorder.Recent()
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notices})
}
