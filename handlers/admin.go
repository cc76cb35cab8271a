package handlers

import (
	"context"
	"net/http"

	"emireminder/cron"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Sweeper runs one dispatcher pass.
type Sweeper interface {
	Sweep(ctx context.Context) cron.SweepResult
}

type AdminHandler struct {
	Dispatcher Sweeper
}

// SweepHandler handles POST /api/admin/sweep.
func (h *AdminHandler) SweepHandler(c *gin.Context) {
	result := h.Dispatcher.Sweep(c.Request.Context())
	getLogger(c).Info("Manual sweep finished",
		zap.Int("due", result.Due), zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed), zap.Bool("busy", result.Busy))

	status := http.StatusOK
	if result.Busy {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}
