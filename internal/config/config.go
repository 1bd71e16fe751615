package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string
	MySQLDSN   string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret string

	CORSOrigins []string

	RateLimitWindow time.Duration
	RateLimitMax    int

	SessionCacheTTL  time.Duration
	SessionCacheSize int

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	SenderEmail string

	SwaggerHost string
}

// devOrigins are the Vite dev-server origins allowed outside production.
var devOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:5174",
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:        env,
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/cardealer?charset=utf8mb4&parseTime=True&loc=Local"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		CORSOrigins: parseOrigins(env),

		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW", 15)) * time.Minute,
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),

		SessionCacheTTL:  time.Duration(getEnvInt("SESSION_CACHE_TTL_SECONDS", 60)) * time.Second,
		SessionCacheSize: getEnvInt("SESSION_CACHE_SIZE", 500),

		SMTPHost:    getEnv("SMTP_HOST", "smtp.brevo.com"),
		SMTPPort:    getEnvInt("SMTP_PORT", 587),
		SMTPUser:    os.Getenv("SMTP_USER"),
		SMTPPass:    os.Getenv("SMTP_PASS"),
		SenderEmail: os.Getenv("SENDER_EMAIL"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}

	if cfg.JWTSecret == "" && env != "production" {
		log.Println("[config] JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = "dev_insecure_secret_change_me"
	}

	if cfg.SMTPUser == "" || cfg.SMTPPass == "" || cfg.SenderEmail == "" {
		log.Println("[config] SMTP settings incomplete, OTP mails will fail to send")
	}

	return cfg
}

// parseOrigins merges CORS_ORIGIN (comma separated) with the dev defaults.
// Production deployments get only the explicitly configured origins.
func parseOrigins(env string) []string {
	var origins []string
	if env != "production" {
		origins = append(origins, devOrigins...)
	}
	for _, o := range strings.Split(os.Getenv("CORS_ORIGIN"), ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		seen := false
		for _, existing := range origins {
			if existing == o {
				seen = true
				break
			}
		}
		if !seen {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
