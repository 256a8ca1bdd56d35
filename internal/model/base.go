package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 只追加的表共用字段，没有软删除
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
}
