package app

import (
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/educator-assistant-backend/internal/assistant/state"
	"github.com/yungbote/educator-assistant-backend/internal/platform/gemini"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/sendgrid"
)

// Clients holds the optional external clients. A nil field means the
// integration is not configured.
type Clients struct {
	Redis    *goredis.Client
	Gemini   gemini.Client
	SendGrid sendgrid.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb, err := state.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	} else {
		log.Info("REDIS_ADDR not set; assistant state kept in memory")
	}

	// Gemini
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gcfg := gemini.ConfigFromEnv()
		gcfg.APIKey = cfg.GeminiAPIKey
		gcfg.Model = cfg.GeminiModel
		gcfg.BaseURL = cfg.GeminiBaseURL
		llm, err := gemini.New(log, gcfg)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init gemini client: %w", err)
		}
		out.Gemini = llm
	} else {
		log.Info("GEMINI_API_KEY not set; assistant runs on the keyword classifier only")
	}

	// SendGrid
	if strings.TrimSpace(cfg.SendGridAPIKey) != "" {
		scfg := sendgrid.ConfigFromEnv()
		scfg.APIKey = cfg.SendGridAPIKey
		scfg.DefaultFromEmail = cfg.SendGridFromEmail
		sg, err := sendgrid.New(log, scfg)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.SendGrid = sg
	} else {
		log.Info("SENDGRID_API_KEY not set; email messages will be queued")
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
