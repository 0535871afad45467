package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/educator-assistant-backend/internal/data/db"
	"github.com/yungbote/educator-assistant-backend/internal/platform/envutil"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Env     string
	LogMode string
	Port    string
	Debug   bool

	DB db.Config

	JWTSecretKey      string
	AccessTokenTTL    time.Duration
	DemoEducatorEmail string
	CORSOrigins       []string

	RedisAddr string
	StateTTL  time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	SendGridAPIKey    string
	SendGridFromEmail string

	BulkSendConcurrency   int
	BulkSendRatePerSecond float64

	AutoExecuteThreshold float64
	LexiconPath          string

	OTelEnabled     bool
	OTelSampleRatio float64
	ShutdownTimeout time.Duration
}

// LoadDotEnv reads .env from the working directory if present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Env:     envutil.String("APP_ENV", "development"),
		LogMode: envutil.String("LOG_MODE", "development"),
		Port:    envutil.String("PORT", "8080"),
		Debug:   envutil.Bool("DEBUG", false),

		DB: db.Config{
			Driver:      envutil.String("DB_DRIVER", db.DriverPostgres),
			DatabaseURL: envutil.String("DATABASE_URL", ""),
			Host:        envutil.String("POSTGRES_HOST", "localhost"),
			Port:        envutil.String("POSTGRES_PORT", "5432"),
			User:        envutil.String("POSTGRES_USER", "postgres"),
			Password:    envutil.String("POSTGRES_PASSWORD", ""),
			Name:        envutil.String("POSTGRES_NAME", "educator_assistant"),
			SQLitePath:  envutil.String("SQLITE_PATH", "educator_assistant.db"),
		},

		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:    envutil.Duration("ACCESS_TOKEN_TTL", 24*time.Hour),
		DemoEducatorEmail: envutil.String("DEMO_EDUCATOR_EMAIL", "demo@educator.local"),
		CORSOrigins:       splitList(envutil.String("CORS_ORIGINS", "")),

		RedisAddr: envutil.String("REDIS_ADDR", ""),
		StateTTL:  envutil.Duration("ASSISTANT_STATE_TTL", 30*time.Minute),

		GeminiAPIKey:  envutil.String("GEMINI_API_KEY", ""),
		GeminiModel:   envutil.String("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: envutil.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		SendGridAPIKey:    envutil.String("SENDGRID_API_KEY", ""),
		SendGridFromEmail: envutil.String("SENDGRID_FROM_EMAIL", ""),

		BulkSendConcurrency:   envutil.Int("BULK_SEND_CONCURRENCY", 8),
		BulkSendRatePerSecond: envutil.Float("BULK_SEND_RATE_PER_SECOND", 20),

		AutoExecuteThreshold: envutil.Float("ASSISTANT_AUTO_EXECUTE_THRESHOLD", 0.7),
		LexiconPath:          envutil.String("ASSISTANT_LEXICON_PATH", ""),

		OTelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OTelSampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 0.1),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if cfg.AutoExecuteThreshold <= 0 || cfg.AutoExecuteThreshold > 1 {
		cfg.AutoExecuteThreshold = 0.7
	}
	if log != nil && cfg.JWTSecretKey == defaultJWTSecret && cfg.Env == "production" {
		log.Warn("JWT_SECRET_KEY is unset; using the development default")
	}
	return cfg
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
