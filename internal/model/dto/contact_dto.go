package dto

import (
	"portfolio/internal/validation"
)

// ========== Contact 相关 DTO ==========

// ContactFormRequest 联系表单请求，支持 JSON 和表单编码
type ContactFormRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func (r ContactFormRequest) Fields() validation.Fields {
	return validation.Fields{
		Name:    r.Name,
		Email:   r.Email,
		Subject: r.Subject,
		Message: r.Message,
	}
}

func NewContactFormRequest(fields validation.Fields) ContactFormRequest {
	return ContactFormRequest{
		Name:    fields.Name,
		Email:   fields.Email,
		Subject: fields.Subject,
		Message: fields.Message,
	}
}

// 返回给访客的固定文案
const (
	MessageAccepted         = "Message sent successfully! I will get back to you soon."
	MessageValidationFailed = "Validation failed"
	MessageSubmitFailed     = "Failed to send message. Please try again later."
)

// ResultKind 提交结果的三种情况
type ResultKind int

const (
	ResultAccepted ResultKind = iota
	ResultRejected
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultAccepted:
		return "accepted"
	case ResultRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// SubmitResult 提交结果，也是 POST /v1/contact 的响应体
type SubmitResult struct {
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Message string                 `json:"message"`
	Success bool                   `json:"success"`
}

func Accepted() SubmitResult {
	return SubmitResult{Success: true, Message: MessageAccepted}
}

func Rejected(errs validation.FieldErrors) SubmitResult {
	return SubmitResult{Message: MessageValidationFailed, Errors: errs}
}

func Failed() SubmitResult {
	return SubmitResult{Message: MessageSubmitFailed}
}

// Kind 根据字段推断结果类型：带字段错误的失败视为校验拒绝
func (r SubmitResult) Kind() ResultKind {
	switch {
	case r.Success:
		return ResultAccepted
	case len(r.Errors) > 0:
		return ResultRejected
	default:
		return ResultFailed
	}
}
