package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 通用错误。
var (
	InvalidRequest      = Definition{Code: "INVALID_REQUEST", Message: "Invalid request body"}
	TooManyRequests     = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please try again later"}
	InternalServerError = Definition{Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
)

// 联系表单模块错误。Message 即返回给访客的文案。
var (
	ValidationFailed = Definition{Code: "VALIDATION_FAILED", Message: "Validation failed"}
	SubmitFailed     = Definition{Code: "SUBMIT_FAILED", Message: "Failed to send message. Please try again later."}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:      InvalidRequest,
	TooManyRequests.Code:     TooManyRequests,
	InternalServerError.Code: InternalServerError,
	ValidationFailed.Code:    ValidationFailed,
	SubmitFailed.Code:        SubmitFailed,
}

// Get 根据错误码返回 Definition，若不存在则返回兜底 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// SkipMessageError 表示消息已被处理，消费者应直接 ack 而不重试。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}
