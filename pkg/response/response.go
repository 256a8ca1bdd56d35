package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	pkgerrors "portfolio/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// StatusForCode 错误码到 HTTP 状态码
func StatusForCode(code string) int {
	switch code {
	case pkgerrors.InvalidRequest.Code:
		return http.StatusBadRequest
	case pkgerrors.ValidationFailed.Code:
		return http.StatusUnprocessableEntity
	case pkgerrors.TooManyRequests.Code:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func toDefinition(err error) pkgerrors.Definition {
	var def pkgerrors.Definition
	if errors.As(err, &def) {
		return def
	}
	return pkgerrors.InternalServerError
}

// Error 返回错误响应，非 Definition 错误一律按 500 处理且不暴露内容
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	def := toDefinition(err)

	c.JSON(StatusForCode(def.Code), ErrorResponse{
		Error: ErrorDetail{
			Code:    def.Code,
			Message: def.Message,
			Details: details,
		},
	})
}

// AbortWithError 返回错误响应并终止后续 handler（用于中间件）
func AbortWithError(ctx context.Context, c *app.RequestContext, err error) {
	Error(ctx, c, err)
	c.Abort()
}
