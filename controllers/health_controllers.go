package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{Store: store}
}

func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hc.Store.Ping(ctx); err != nil {
		utils.ErrorLogger.Errorf("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
}
