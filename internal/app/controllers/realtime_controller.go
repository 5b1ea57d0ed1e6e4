package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/websocket"
)

// RealtimeController upgrades authenticated clients onto the websocket hub
type RealtimeController struct {
	hub *websocket.Hub
}

// NewRealtimeController creates a RealtimeController
func NewRealtimeController(hub *websocket.Hub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

// Connect subscribes the caller to the channel their session entitles them
// to: staff join the shared staff channel, students join their own channel.
func (rc *RealtimeController) Connect(c *gin.Context) {
	userType, ok := c.Get(middleware.ContextUserType)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrUnauthenticated)
		return
	}

	var channel string
	if userType.(models.UserType).IsStaff() {
		channel = services.ChannelStaff
	} else {
		channel = services.StudentChannel(c.GetInt64(middleware.ContextUserID))
	}

	websocket.Serve(rc.hub, c, channel)
}
