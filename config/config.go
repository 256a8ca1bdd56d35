package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort     string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost     string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment    string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName    string `env:"SERVICE_NAME" envDefault:"portfolio"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"portfolio"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"5"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"20"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"folio"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪 / 指标
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 联系表单限流，按 IP
	RateLimitEnabled       bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitWindowSeconds int  `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitMaxRequests   int  `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"5"`
	RateLimitBlockSeconds  int  `env:"RATE_LIMIT_BLOCK_SECONDS" envDefault:"600"`

	// 提交成功后需要失效的页面缓存 key（不含前缀）
	ContactPageCacheKeys []string `env:"CONTACT_PAGE_CACHE_KEYS" envSeparator:"," envDefault:"page:/"`

	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:""`

	// 站长邮件通知（worker）
	SMTPHost   string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort   string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	OwnerEmail string `env:"OWNER_EMAIL"`

	// 限流 key 中的 IP 做加盐哈希
	IPHashSalt string `env:"IP_HASH_SALT" envDefault:""`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`
}

// Init 读取 .env 和环境变量，填充 Cfg
func Init() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}

	Cfg = cfg
	validateConfig()
	return nil
}

func validateConfig() {
	if Cfg.SMTPUser == "" || Cfg.SMTPPass == "" {
		log.Printf("WARN: SMTP_USER / SMTP_PASS not set, owner notification mails will fail")
	}

	if Cfg.OwnerEmail == "" {
		log.Printf("WARN: OWNER_EMAIL is not set, owner notification mails will fail")
	}

	if Cfg.IPHashSalt == "" && Cfg.IsProduction() {
		log.Printf("WARN: IP_HASH_SALT is not set, rate limit keys use unsalted IP hashes")
	}

	if Cfg.RateLimitMaxRequests <= 0 {
		log.Printf("WARN: RATE_LIMIT_MAX_REQUESTS <= 0, falling back to 5")
		Cfg.RateLimitMaxRequests = 5
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}
