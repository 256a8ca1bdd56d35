package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"portfolio/config"
	pkgdb "portfolio/pkg/database"
	"portfolio/pkg/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
	dbErr  error
)

func Init() error {
	dbOnce.Do(func() {
		gormCfg := &gorm.Config{
			Logger:                                   newLogger(),
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
			SkipDefaultTransaction:                   true,
		}

		var gormDB *gorm.DB
		gormDB, dbErr = gorm.Open(postgres.Open(config.Cfg.GetDSN()), gormCfg)
		if dbErr != nil {
			logger.Logger.Error("Failed to open database", zap.String("host", config.Cfg.PostgreSQLHost), zap.Error(dbErr))
			return
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			dbErr = err
			logger.Logger.Error("Failed to get sql.DB from gorm", zap.Error(err))
			return
		}

		configureConnectionPool(sqlDB)

		if err := sqlDB.Ping(); err != nil {
			dbErr = err
			logger.Logger.Error("Failed to ping database", zap.Error(err))
			return
		}

		if err := pkgdb.WithDefaultOTELPlugin(gormDB, config.Cfg.ServiceName); err != nil {
			logger.Logger.Warn("Failed to register GORM otel plugin", zap.Error(err))
		}

		db = gormDB
		if err := Migrate(); err != nil {
			dbErr = err
			return
		}
		logger.Logger.Info("Database initialized successfully")
	})

	return dbErr
}

func DB() *gorm.DB {
	return db
}

// Ping 用于 readyz 探活
func Ping(ctx context.Context) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(ctx context.Context) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- sqlDB.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func configureConnectionPool(sqlDB *sql.DB) {
	cfg := config.Cfg

	sqlDB.SetMaxIdleConns(cfg.PostgreSQLMaxIdle)
	sqlDB.SetMaxOpenConns(cfg.PostgreSQLMaxOpen)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
}

func newLogger() gormlogger.Interface {
	var level gormlogger.LogLevel
	switch config.Cfg.LoggerLevel {
	case "DEBUG":
		level = gormlogger.Info
	case "ERROR":
		level = gormlogger.Error
	default:
		level = gormlogger.Warn
	}

	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		// 联系消息正文属于访客隐私
		ParameterizedQueries: true,
		Colorful:             false,
	})
}

type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Logger.Sugar().Infof(format, args...)
}
