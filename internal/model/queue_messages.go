package model

import "time"

// ContactSubmittedMessage 联系消息落库后投递给 worker 的事件
type ContactSubmittedMessage struct {
	MessageID   string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	ContactID   string `json:"contact_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	SubmittedAt string `json:"submitted_at"` // RFC3339
}

// NewContactSubmittedMessage 由已落库的记录构造事件
func NewContactSubmittedMessage(messageID string, m *ContactMessage) ContactSubmittedMessage {
	return ContactSubmittedMessage{
		MessageID:   messageID,
		ContactID:   m.ID.String(),
		Name:        m.Name,
		Email:       m.Email,
		Subject:     m.Subject,
		Message:     m.Message,
		SubmittedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
