package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"portfolio/internal/model"
	"portfolio/pkg/logger"
)

// Migrate 创建 contact_messages 表。gen_random_uuid() 需要 PostgreSQL 13+ 或 pgcrypto。
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	if err := db.AutoMigrate(&model.ContactMessage{}); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
