package app

import (
	"fmt"

	"github.com/yungbote/educator-assistant-backend/internal/assistant/chatbot"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/dialog"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/executor"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/nlu"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/router"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/state"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type Assistant struct {
	Router *router.Router
	States state.StateStore
	// Memory is set when States is the in-process store and needs sweeping.
	Memory *state.MemoryStore
}

func wireAssistant(log *logger.Logger, cfg Config, r Repos, s Services, c Clients) (Assistant, error) {
	log.Info("Wiring assistant...")
	lex, err := nlu.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return Assistant{}, fmt.Errorf("load lexicon: %w", err)
	}
	classifier, err := nlu.New(lex)
	if err != nil {
		return Assistant{}, fmt.Errorf("init classifier: %w", err)
	}

	var out Assistant
	if c.Redis != nil {
		rs, err := state.NewRedisStore(log, c.Redis, cfg.StateTTL)
		if err != nil {
			return Assistant{}, fmt.Errorf("init redis state store: %w", err)
		}
		out.States = rs
	} else {
		out.Memory = state.NewMemoryStore(cfg.StateTTL)
		out.States = out.Memory
	}

	var bot *chatbot.Chatbot
	if c.Gemini != nil {
		bot = chatbot.New(c.Gemini, log)
	}

	exec := executor.New(log, executor.Services{
		Students:       s.Students,
		Sections:       s.Sections,
		Grades:         s.Grades,
		Messages:       s.Messages,
		Meetings:       s.Meetings,
		Schedules:      s.Schedules,
		Communications: s.Communications,
		Reports:        s.Reports,
	})

	rt, err := router.New(log, router.Deps{
		Classifier: classifier,
		Chatbot:    bot,
		States:     out.States,
		Dialog:     dialog.NewManager(cfg.AutoExecuteThreshold),
		Executor:   exec,
		Students:   s.Students,
		Settings:   s.Settings,
		Turns:      r.AssistantTurn,
	})
	if err != nil {
		return Assistant{}, fmt.Errorf("init assistant router: %w", err)
	}
	out.Router = rt
	return out, nil
}
