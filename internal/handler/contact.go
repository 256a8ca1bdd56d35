package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"portfolio/internal/model/dto"
	"portfolio/pkg/errors"
	"portfolio/pkg/logger"
)

// ContactSubmitter 由 service.ContactService 实现
type ContactSubmitter interface {
	Submit(ctx context.Context, req dto.ContactFormRequest) dto.SubmitResult
}

type ContactHandler struct {
	svc ContactSubmitter
}

func NewContactHandler(svc ContactSubmitter) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// Submit 提交联系表单，支持 JSON、urlencoded 和 multipart 表单。
// 字段只从请求体读取，query 参数不参与绑定。响应体始终是 {success, message, errors?}。
func (h *ContactHandler) Submit(ctx context.Context, c *app.RequestContext) {
	req, err := bindContactForm(c)
	if err != nil {
		logger.Logger.Debug("Invalid contact payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.SubmitResult{Message: errors.InvalidRequest.Message})
		return
	}

	result := h.svc.Submit(ctx, req)
	c.JSON(statusFor(result), result)
}

func statusFor(result dto.SubmitResult) int {
	switch result.Kind() {
	case dto.ResultAccepted:
		return http.StatusCreated
	case dto.ResultRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// bindContactForm 按 Content-Type 选择绑定方式，其余类型按 JSON 解析
func bindContactForm(c *app.RequestContext) (dto.ContactFormRequest, error) {
	var req dto.ContactFormRequest

	contentType := strings.ToLower(string(c.ContentType()))
	switch {
	case strings.HasPrefix(contentType, consts.MIMEApplicationHTMLForm):
		args := c.Request.PostArgs()
		req.Name = string(args.Peek("name"))
		req.Email = string(args.Peek("email"))
		req.Subject = string(args.Peek("subject"))
		req.Message = string(args.Peek("message"))
		return req, nil

	case strings.HasPrefix(contentType, consts.MIMEMultipartPOSTForm):
		form, err := c.MultipartForm()
		if err != nil {
			return req, err
		}
		first := func(key string) string {
			if v := form.Value[key]; len(v) > 0 {
				return v[0]
			}
			return ""
		}
		req.Name = first("name")
		req.Email = first("email")
		req.Subject = first("subject")
		req.Message = first("message")
		return req, nil

	default:
		err := c.BindJSON(&req)
		return req, err
	}
}
