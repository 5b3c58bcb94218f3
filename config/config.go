package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	WebOrigin string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string

	SessionTTL     time.Duration
	ScanInterval   time.Duration
	BorrowDuration time.Duration
}

// LoadEnv pulls a local .env into the process environment; missing
// files are fine outside development.
func LoadEnv() { _ = godotenv.Load() }

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("WEB_ORIGIN", "http://localhost:5173")

	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "equiptrack")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("SESSION_TTL_SECONDS", 86400)
	v.SetDefault("SCAN_INTERVAL_SECONDS", 300)
	v.SetDefault("BORROW_DURATION_MINUTES", 60)

	return Config{
		Port:      v.GetString("PORT"),
		WebOrigin: v.GetString("WEB_ORIGIN"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		SessionTTL:     time.Duration(v.GetInt("SESSION_TTL_SECONDS")) * time.Second,
		ScanInterval:   time.Duration(v.GetInt("SCAN_INTERVAL_SECONDS")) * time.Second,
		BorrowDuration: time.Duration(v.GetInt("BORROW_DURATION_MINUTES")) * time.Minute,
	}
}
