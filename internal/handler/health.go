package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"portfolio/internal/model"
	"portfolio/pkg/logger"
)

// PingFunc 检查依赖是否可用，例如 database.Ping
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	ping PingFunc
}

func NewHealthHandler(ping PingFunc) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Live 存活探针
func (h *HealthHandler) Live(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusOK, model.HealthResponse{Status: model.HealthStatusOK})
}

// Ready 就绪探针，数据库不可用时返回 503
func (h *HealthHandler) Ready(ctx context.Context, c *app.RequestContext) {
	if h.ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.ping(pingCtx); err != nil {
			logger.Logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, model.HealthResponse{
				Status:  model.HealthStatusUnavailable,
				Message: "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, model.HealthResponse{Status: model.HealthStatusOK})
}
