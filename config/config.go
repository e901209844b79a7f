package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	SMTP    SMTPConfig
	Redis   RedisConfig
	Cleanup CleanupConfig
	Live    LiveConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type SMTPConfig struct {
	Host string
	Port string
	From string
}

type RedisConfig struct {
	// Addr empty means the ephemeral live state stays in process memory.
	Addr     string
	Password string
	DB       int
}

type CleanupConfig struct {
	RetentionDays int
	// Weekly purge runs at Weekday/Hour in the canonical timezone.
	Weekday   time.Weekday
	Hour      int
	BatchSize int
}

type LiveConfig struct {
	TentativeTTL  time.Duration
	SweepInterval time.Duration
}

var AppConfig *Config

func Load() {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "localhost"),
			Port: getEnv("SMTP_PORT", "1025"),
			From: getEnv("SMTP_FROM", "no-reply@spalatorie-camin.ro"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cleanup: CleanupConfig{
			RetentionDays: getEnvAsInt("CLEANUP_RETENTION_DAYS", 7),
			Weekday:       time.Weekday(getEnvAsInt("CLEANUP_WEEKDAY", int(time.Sunday))),
			Hour:          getEnvAsInt("CLEANUP_HOUR", 3),
			BatchSize:     getEnvAsInt("CLEANUP_BATCH_SIZE", 450),
		},
		Live: LiveConfig{
			TentativeTTL:  getEnvAsDuration("TENTATIVE_TTL", 30*time.Second),
			SweepInterval: getEnvAsDuration("LIVE_SWEEP_INTERVAL", time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
