package handlers

import (
	"context"
	"net/http"

	"gentherapist/src/logger"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	backend Pinger
}

func NewHealthHandler(backend Pinger) *HealthHandler { return &HealthHandler{backend: backend} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if err := h.backend.Ping(c.Request.Context()); err != nil {
		logger.Error().Err(err).Msg("Health check failed")
		c.String(http.StatusServiceUnavailable, "unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}
