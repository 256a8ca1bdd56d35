package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"portfolio/internal/model"
)

// ErrAppendOnly 见 model.ErrAppendOnly
var ErrAppendOnly = model.ErrAppendOnly

// MessageStore 联系消息的持久化，只提供追加
type MessageStore interface {
	Append(ctx context.Context, msg *model.ContactMessage) error
}

// GormMessageStore 基于 GORM 的 contact_messages 存储
type GormMessageStore struct {
	db *gorm.DB
}

func NewGormMessageStore(db *gorm.DB) *GormMessageStore {
	return &GormMessageStore{db: db}
}

// Append 插入一条记录，成功后 msg.ID / CreatedAt 已被填充
func (s *GormMessageStore) Append(ctx context.Context, msg *model.ContactMessage) error {
	if s.db == nil {
		return gorm.ErrInvalidDB
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}
