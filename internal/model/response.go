package model

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	HealthStatusOK          = "ok"
	HealthStatusUnavailable = "unavailable"
)
