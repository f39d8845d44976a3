package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ludvigisaksen/PA-AI/internal/http/dto"
	"github.com/ludvigisaksen/PA-AI/internal/service"
)

// Health answers liveness checks with plain text.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// NotFound is the JSON 404 for unknown paths and methods.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.MsgNotFound})
}

type OpsHandler struct {
	briefing service.BriefingRunner
}

func NewOpsHandler(briefing service.BriefingRunner) *OpsHandler {
	return &OpsHandler{briefing: briefing}
}

// DailyBriefing runs the briefing flow for an external scheduler.
func (h *OpsHandler) DailyBriefing(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.briefing.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "daily briefing failed", "error", err)
		c.String(http.StatusInternalServerError, "Daily briefing failed")
		return
	}
	c.String(http.StatusOK, "Daily briefing sent")
}
