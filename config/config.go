package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string        // dev, prod
	HTTPPort      string        // default 8000
	DatabaseURL   string        // required
	RedisAddr     string        // host:port
	RedisPassword string        // optional
	JWTSecret     string        // required in prod
	SMTPHost      string        // email notifier
	SMTPPort      int           // email notifier
	EmailUser     string        // email notifier
	EmailPass     string        // email notifier
	LockTTL       time.Duration // how long a booking lock lives
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:           getEnv("APP_ENV", "dev"),
		HTTPPort:      getEnv("HTTP_PORT", "8000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnv("JWT_SECRET", "solid_secret_key"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getInt("SMTP_PORT", 587),
		EmailUser:     os.Getenv("EMAIL_USER"),
		EmailPass:     os.Getenv("EMAIL_PASS"),
		LockTTL:       getDuration("LOCK_TTL", 5*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
