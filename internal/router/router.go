package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"portfolio/internal/handler"
	"portfolio/internal/middleware"
)

// Handlers 路由依赖
type Handlers struct {
	Contact   *handler.ContactHandler
	Health    *handler.HealthHandler
	RateLimit app.HandlerFunc
}

func Register(h *server.Hertz, handlers Handlers) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.DefaultCORSMiddleware())
	h.Use(middleware.MetricsMiddleware())

	h.GET("/healthz", handlers.Health.Live)
	h.GET("/readyz", handlers.Health.Ready)

	v1 := h.Group("/v1")

	// 联系表单路由
	contact := v1.Group("/contact")
	if handlers.RateLimit != nil {
		contact.Use(handlers.RateLimit)
	}
	{
		contact.POST("", handlers.Contact.Submit)
	}
}
