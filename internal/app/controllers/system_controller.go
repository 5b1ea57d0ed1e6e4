package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
)

// SystemController exposes operational endpoints for the admin dashboard
type SystemController struct {
	statusService services.StatusService
}

// NewSystemController creates a SystemController
func NewSystemController(statusService services.StatusService) *SystemController {
	return &SystemController{statusService: statusService}
}

// Status reports host and database health figures
func (sc *SystemController) Status(c *gin.Context) {
	resp, err := sc.statusService.Status(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Health is a lightweight liveness probe
func (sc *SystemController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
