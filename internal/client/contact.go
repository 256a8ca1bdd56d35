// Package client 是联系表单的 HTTP 传输层，基于 hertz client。
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	hertzclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"portfolio/internal/model/dto"
	"portfolio/internal/validation"
)

const (
	DefaultTimeout = 15 * time.Second
	ContactPath    = "/v1/contact"
)

// ErrTransport 请求没有拿到处理结果：拨号失败、超时、限流或非预期响应体
var ErrTransport = errors.New("contact transport failed")

// Doer hertz client.Client 的子集
type Doer interface {
	DoTimeout(ctx context.Context, req *protocol.Request, resp *protocol.Response, timeout time.Duration) error
}

type ContactClient struct {
	doer     Doer
	endpoint string
	timeout  time.Duration
}

type Option func(*ContactClient)

func WithTimeout(d time.Duration) Option {
	return func(c *ContactClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithDoer(d Doer) Option {
	return func(c *ContactClient) {
		c.doer = d
	}
}

// NewContactClient baseURL 形如 http://localhost:8080
func NewContactClient(baseURL string, opts ...Option) (*ContactClient, error) {
	if baseURL == "" {
		return nil, errors.New("contact client: empty base url")
	}

	c := &ContactClient{
		endpoint: strings.TrimRight(baseURL, "/") + ContactPath,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.doer == nil {
		hc, err := hertzclient.NewClient(
			hertzclient.WithDialTimeout(c.timeout),
			hertzclient.WithMaxConnsPerHost(4),
		)
		if err != nil {
			return nil, fmt.Errorf("create hertz client: %w", err)
		}
		c.doer = hc
	}

	return c, nil
}

// wireResult 用指针区分字段缺失和零值
type wireResult struct {
	Success *bool                  `json:"success"`
	Errors  validation.FieldErrors `json:"errors"`
	Message string                 `json:"message"`
}

// Submit 发送表单。422/500 也是处理结果，只要响应体是提交结果的结构且 message 非空
func (c *ContactClient) Submit(ctx context.Context, fields validation.Fields) (dto.SubmitResult, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return dto.SubmitResult{}, fmt.Errorf("%w: %v", ErrTransport, context.DeadlineExceeded)
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	body, err := json.Marshal(dto.NewContactFormRequest(fields))
	if err != nil {
		return dto.SubmitResult{}, fmt.Errorf("marshal contact form: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
	req.Header.Set("Accept", consts.MIMEApplicationJSON)
	req.SetBody(body)

	if err := c.doer.DoTimeout(ctx, req, resp, timeout); err != nil {
		return dto.SubmitResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return decodeResult(resp.StatusCode(), resp.Body())
}

func decodeResult(status int, body []byte) (dto.SubmitResult, error) {
	var wire wireResult
	if err := json.Unmarshal(body, &wire); err != nil {
		return dto.SubmitResult{}, fmt.Errorf("%w: status %d: undecodable body", ErrTransport, status)
	}
	if wire.Success == nil || wire.Message == "" {
		return dto.SubmitResult{}, fmt.Errorf("%w: status %d: unexpected body", ErrTransport, status)
	}

	result := dto.SubmitResult{
		Success: *wire.Success,
		Message: wire.Message,
	}
	if !result.Success && len(wire.Errors) > 0 {
		result.Errors = wire.Errors
	}
	return result, nil
}
