package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Storage       StorageConfig
	Tracing       TracingConfig `mapstructure:"tracing"`
	Log           LogConfig     `mapstructure:"log"`
	Marketplace   MarketplaceConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Notifications NotificationConfig
	CORS          CORSConfig      `mapstructure:"cors"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`

	// set from command line flags, not the config file
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// MarketplaceConfig points at the external backend that owns designs, courses and enrollments.
type MarketplaceConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FallbackMessage string        `mapstructure:"fallback_message"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type StorageConfig struct {
	Type          string        `mapstructure:"type"`
	LocalPath     string        `mapstructure:"local_path"`
	MinioEndpoint string        `mapstructure:"minio_endpoint"`
	MinioAccessID string        `mapstructure:"minio_access_key"`
	MinioSecret   string        `mapstructure:"minio_secret_key"`
	MinioBucket   string        `mapstructure:"minio_bucket"`
	MinioUseSSL   bool          `mapstructure:"minio_use_ssl"`
	MinioRegion   string        `mapstructure:"minio_region"`
	OSSEndpoint   string        `mapstructure:"oss_endpoint"`
	OSSAccessKey  string        `mapstructure:"oss_access_key"`
	OSSSecretKey  string        `mapstructure:"oss_secret_key"`
	OSSBucket     string        `mapstructure:"oss_bucket"`
	PresignTTL    time.Duration `mapstructure:"presign_ttl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// LogConfig drives the zap cores. An empty level follows server.mode.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CacheConfig struct {
	CourseTTL time.Duration `mapstructure:"course_ttl"`
}

type NotificationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

const DefaultFallbackMessage = "Something went wrong. Please try again."

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.charset", "utf8mb4")
	viper.SetDefault("database.parsetime", true)
	viper.SetDefault("marketplace.timeout", 10*time.Second)
	viper.SetDefault("marketplace.fallback_message", DefaultFallbackMessage)
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local_path", "uploads")
	viper.SetDefault("storage.presign_ttl", time.Hour)
	viper.SetDefault("storage.minio_region", "us-east-1")
	viper.SetDefault("redis.pool_size", 20)
	viper.SetDefault("redis.dial_timeout", 5*time.Second)
	viper.SetDefault("redis.read_timeout", time.Second)
	viper.SetDefault("redis.write_timeout", time.Second)
	viper.SetDefault("cache.course_ttl", 10*time.Minute)
	viper.SetDefault("notifications.ttl", 5*time.Minute)
	viper.SetDefault("log.file", "logs/gateway.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 5)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("rate_limit.max_requests", 600)
	viper.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("DESIGNHUB")
	viper.AutomaticEnv()

	setDefaults()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Marketplace backend
	viper.BindEnv("marketplace.base_url", "MARKETPLACE_BASE_URL")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	viper.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	viper.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	viper.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Validate rejects configurations the gateway cannot run with.
func (c *Config) Validate() error {
	if c.Marketplace.BaseURL == "" {
		return fmt.Errorf("marketplace.base_url is required")
	}
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	if c.Marketplace.FallbackMessage == "" {
		c.Marketplace.FallbackMessage = DefaultFallbackMessage
	}
	return nil
}
