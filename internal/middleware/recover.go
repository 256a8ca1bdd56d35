package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"portfolio/config"
	"portfolio/pkg/errors"
	"portfolio/pkg/logger"
	"portfolio/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 严重错误回调（可用于发送告警）
	OnPanic func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte)
	// 是否记录堆栈
	EnableStackTrace bool
	// 非生产环境在 details 中返回 panic 内容
	ExposeDetails bool
}

// NewRecoverConfig 创建 recover 配置
func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace: true,
		ExposeDetails:    !config.Cfg.IsProduction(),
	}
}

// RecoverMiddleware 创建 recover 中间件
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

// RecoverMiddlewareWithConfig 带配置的 recover 中间件
func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = debug.Stack()
	}

	// 请求体里是访客的联系信息，不写日志
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("request_id", string(c.GetHeader("X-Request-ID"))),
	}
	if len(stack) > 0 {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	logger.Logger.Error("[PANIC RECOVERED]", fields...)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(fmt.Errorf("panic: %v", err))
		span.SetStatus(codes.Error, "panic recovered")
	}

	if cfg.OnPanic != nil {
		cfg.OnPanic(ctx, c, err, stack)
	}

	var details map[string]interface{}
	if cfg.ExposeDetails {
		details = map[string]interface{}{"panic": fmt.Sprintf("%v", err)}
	}
	response.ErrorWithDetails(ctx, c, errors.InternalServerError, details)
	c.Abort()
}
