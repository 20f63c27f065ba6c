package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReadinessChecker reports whether the backing store is reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

type HealthHandler struct {
	appName string
	version string
	checker ReadinessChecker
	log     *zap.Logger
}

func NewHealthHandler(appName, version string, checker ReadinessChecker, log *zap.Logger) *HealthHandler {
	return &HealthHandler{appName: appName, version: version, checker: checker, log: log}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/healthz", h.Live)
	r.GET("/readyz", h.Ready)
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Welcome to the Surgery Scheduling API"})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.appName, "version": h.version})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.checker.Ready(ctx); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
