package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portfolio/internal/validation"
)

// ErrAppendOnly 联系消息写入后不允许修改或删除
var ErrAppendOnly = errors.New("contact_messages is append-only")

// ContactMessage 访客通过联系表单提交的一条消息
type ContactMessage struct {
	BaseModel
	Name    string `gorm:"type:text;not null" json:"name"`
	Email   string `gorm:"type:text;not null" json:"email"`
	Subject string `gorm:"type:text;not null" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

// NewContactMessage 用已校验的字段构造记录，ID 和时间戳在写入时生成
func NewContactMessage(fields validation.Fields) *ContactMessage {
	return &ContactMessage{
		Name:    fields.Name,
		Email:   fields.Email,
		Subject: fields.Subject,
		Message: fields.Message,
	}
}

// Fields 还原成表单字段
func (m *ContactMessage) Fields() validation.Fields {
	return validation.Fields{
		Name:    m.Name,
		Email:   m.Email,
		Subject: m.Subject,
		Message: m.Message,
	}
}

// BeforeCreate 生成 ID，时间戳只在插入时写一次
func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = m.CreatedAt
	return nil
}

func (m *ContactMessage) BeforeUpdate(tx *gorm.DB) error {
	return ErrAppendOnly
}

func (m *ContactMessage) BeforeDelete(tx *gorm.DB) error {
	return ErrAppendOnly
}
