package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Invite    InviteConfig
	Mail      MailConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	Env      string
	BaseURL  string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type InviteConfig struct {
	// ExpiryDays is how long a password-setup link stays valid.
	ExpiryDays int
}

type MailConfig struct {
	Region string
	Sender string
}

type StorageConfig struct {
	// Backend is "disk" or "s3".
	Backend string
	Root    string
	Bucket  string
	Region  string
}

type WorkerConfig struct {
	// SweepSchedule is the cron cadence of the publish sweep.
	SweepSchedule string
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (i *InviteConfig) Expiry() time.Duration {
	return time.Duration(i.ExpiryDays) * 24 * time.Hour
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("SERVER_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postflow")
	v.SetDefault("DATABASE_PASSWORD", "postflow_secret")
	v.SetDefault("DATABASE_NAME", "postflow")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("INVITE_EXPIRY_DAYS", 7)
	v.SetDefault("MAIL_REGION", "us-east-1")
	v.SetDefault("MAIL_SENDER", "no-reply@postflow.local")
	v.SetDefault("STORAGE_BACKEND", "disk")
	v.SetDefault("STORAGE_ROOT", "storage")
	v.SetDefault("STORAGE_BUCKET", "")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("WORKER_SWEEP_SCHEDULE", "*/5 * * * *")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host:     v.GetString("SERVER_HOST"),
			Port:     v.GetInt("SERVER_PORT"),
			Env:      v.GetString("SERVER_ENV"),
			BaseURL:  strings.TrimRight(v.GetString("SERVER_BASE_URL"), "/"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Invite: InviteConfig{
			ExpiryDays: v.GetInt("INVITE_EXPIRY_DAYS"),
		},
		Mail: MailConfig{
			Region: v.GetString("MAIL_REGION"),
			Sender: v.GetString("MAIL_SENDER"),
		},
		Storage: StorageConfig{
			Backend: v.GetString("STORAGE_BACKEND"),
			Root:    v.GetString("STORAGE_ROOT"),
			Bucket:  v.GetString("STORAGE_BUCKET"),
			Region:  v.GetString("STORAGE_REGION"),
		},
		Worker: WorkerConfig{
			SweepSchedule: v.GetString("WORKER_SWEEP_SCHEDULE"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}
