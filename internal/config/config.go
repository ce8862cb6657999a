package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Extractor ExtractorConfig
	Queue     QueueConfig
	Upload    UploadConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT validation settings. Tokens are issued by the external
// auth service; this service only validates them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds object storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// ExtractorConfig holds AI extraction settings.
type ExtractorConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// QueueConfig holds extraction worker pool settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	Size        int `mapstructure:"size"`
}

// UploadConfig holds local upload handling settings.
type UploadConfig struct {
	TempDir       string `mapstructure:"temp_dir"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds Redis-backed rate limiter settings. Disabled when
// RedisAddr is empty.
type RateLimitConfig struct {
	RedisAddr string `mapstructure:"redis_addr"`
	PerMinute int64  `mapstructure:"per_minute"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the TRADEFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRADEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tradeflow")
	v.SetDefault("db.password", "tradeflow_secret")
	v.SetDefault("db.name", "tradeflow_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "tradeflow")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "tradeflow-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Extractor defaults
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.model", "gpt-5.1")
	v.SetDefault("extractor.timeout_secs", 120)

	// Queue defaults
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.size", 64)

	// Upload defaults
	v.SetDefault("upload.temp_dir", "")
	v.SetDefault("upload.max_file_size_mb", 25)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Rate limit defaults (disabled unless redis_addr is set)
	v.SetDefault("rate_limit.redis_addr", "")
	v.SetDefault("rate_limit.per_minute", 100)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@tradeflow.dev")
	v.SetDefault("email.from_name", "TradeFlow")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "TRADEFLOW_SERVER_PORT",
		"server.read_timeout":      "TRADEFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "TRADEFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":       "TRADEFLOW_SERVER_ENVIRONMENT",
		"db.host":                  "TRADEFLOW_DB_HOST",
		"db.port":                  "TRADEFLOW_DB_PORT",
		"db.user":                  "TRADEFLOW_DB_USER",
		"db.password":              "TRADEFLOW_DB_PASSWORD",
		"db.name":                  "TRADEFLOW_DB_NAME",
		"db.sslmode":               "TRADEFLOW_DB_SSLMODE",
		"db.max_open":              "TRADEFLOW_DB_MAX_OPEN",
		"db.max_idle":              "TRADEFLOW_DB_MAX_IDLE",
		"jwt.secret":               "TRADEFLOW_JWT_SECRET",
		"jwt.issuer":               "TRADEFLOW_JWT_ISSUER",
		"s3.region":                "TRADEFLOW_S3_REGION",
		"s3.bucket":                "TRADEFLOW_S3_BUCKET",
		"s3.endpoint":              "TRADEFLOW_S3_ENDPOINT",
		"s3.access_key":            "TRADEFLOW_S3_ACCESS_KEY",
		"s3.secret_key":            "TRADEFLOW_S3_SECRET_KEY",
		"s3.presign_expiry":        "TRADEFLOW_S3_PRESIGN_EXPIRY",
		"extractor.api_key":        "TRADEFLOW_EXTRACTOR_API_KEY",
		"extractor.model":          "TRADEFLOW_EXTRACTOR_MODEL",
		"extractor.timeout_secs":   "TRADEFLOW_EXTRACTOR_TIMEOUT_SECS",
		"queue.concurrency":        "TRADEFLOW_QUEUE_CONCURRENCY",
		"queue.size":               "TRADEFLOW_QUEUE_SIZE",
		"upload.temp_dir":          "TRADEFLOW_UPLOAD_TEMP_DIR",
		"upload.max_file_size_mb":  "TRADEFLOW_UPLOAD_MAX_FILE_SIZE_MB",
		"cors.allowed_origins":     "TRADEFLOW_CORS_ALLOWED_ORIGINS",
		"rate_limit.redis_addr":    "TRADEFLOW_RATE_LIMIT_REDIS_ADDR",
		"rate_limit.per_minute":    "TRADEFLOW_RATE_LIMIT_PER_MINUTE",
		"email.provider":           "TRADEFLOW_EMAIL_PROVIDER",
		"email.region":             "TRADEFLOW_EMAIL_REGION",
		"email.from_address":       "TRADEFLOW_EMAIL_FROM_ADDRESS",
		"email.from_name":          "TRADEFLOW_EMAIL_FROM_NAME",
		"log.level":                "TRADEFLOW_LOG_LEVEL",
		"log.format":               "TRADEFLOW_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TRADEFLOW_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TRADEFLOW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Extractor = ExtractorConfig{
		APIKey:      v.GetString("extractor.api_key"),
		Model:       v.GetString("extractor.model"),
		TimeoutSecs: v.GetInt("extractor.timeout_secs"),
	}
	cfg.Queue = QueueConfig{
		Concurrency: v.GetInt("queue.concurrency"),
		Size:        v.GetInt("queue.size"),
	}
	cfg.Upload = UploadConfig{
		TempDir:       v.GetString("upload.temp_dir"),
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.RateLimit = RateLimitConfig{
		RedisAddr: v.GetString("rate_limit.redis_addr"),
		PerMinute: v.GetInt64("rate_limit.per_minute"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
