package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Storage      StorageConfig
	Checkout     CheckoutConfig
	Cart         CartConfig
	Notification NotificationConfig
	Log          LogConfig
	HTTP         HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// StripeConfig holds payment processor settings
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// StorageConfig holds prescription file storage settings
type StorageConfig struct {
	Provider        string // s3 or stub
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
	URLExpiry       time.Duration
}

// CheckoutConfig holds checkout session settings
type CheckoutConfig struct {
	SessionTTL time.Duration
}

// CartConfig holds cart cache settings
type CartConfig struct {
	TTL time.Duration
}

// NotificationConfig holds the notification dispatcher settings
type NotificationConfig struct {
	QueueSize int
	Workers   int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with PHARMACY_ prefix (e.g., PHARMACY_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file is fine, defaults and env vars apply
	}

	v.SetEnvPrefix("PHARMACY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("stripe.secret_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
			Currency:      v.GetString("stripe.currency"),
		},
		Storage: StorageConfig{
			Provider:        v.GetString("storage.provider"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			URLExpiry:       v.GetDuration("storage.url_expiry"),
		},
		Checkout: CheckoutConfig{
			SessionTTL: v.GetDuration("checkout.session_ttl"),
		},
		Cart: CartConfig{
			TTL: v.GetDuration("cart.ttl"),
		},
		Notification: NotificationConfig{
			QueueSize: v.GetInt("notification.queue_size"),
			Workers:   v.GetInt("notification.workers"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pharmacy-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "pharmacy"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "pharmacy-backend"
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "usd"
	}
	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "stub"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.URLExpiry == 0 {
		cfg.Storage.URLExpiry = 5 * time.Minute
	}
	if cfg.Checkout.SessionTTL == 0 {
		cfg.Checkout.SessionTTL = 15 * time.Minute
	}
	if cfg.Cart.TTL == 0 {
		cfg.Cart.TTL = 14 * 24 * time.Hour
	}
	if cfg.Notification.QueueSize == 0 {
		cfg.Notification.QueueSize = 256
	}
	if cfg.Notification.Workers == 0 {
		cfg.Notification.Workers = 2
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
}

// validate checks required configuration in production
func (c *Config) validate() error {
	if c.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if c.Stripe.SecretKey == "" {
			return fmt.Errorf("stripe.secret_key is required in production")
		}
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production")
		}
		if c.Storage.Provider == "stub" {
			return fmt.Errorf("storage.provider must not be stub in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Addr returns the Redis address as host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
