package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/assistant/router"
	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

const defaultHistoryLimit = 50

type AssistantHandler struct {
	log       *logger.Logger
	auth      services.AuthService
	settings  services.SettingsService
	assistant *router.Router
}

func NewAssistantHandler(log *logger.Logger, auth services.AuthService, settings services.SettingsService, assistant *router.Router) *AssistantHandler {
	return &AssistantHandler{
		log:       log.With("handler", "AssistantHandler"),
		auth:      auth,
		settings:  settings,
		assistant: assistant,
	}
}

// POST /assistant/chat
// The reply is always 200; failed actions come back with status "error".
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required,max=4000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	me, err := h.auth.Me(ctx)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	reply := h.assistant.Handle(ctx, me, req.Message)
	response.RespondOK(c, gin.H{"reply": reply})
}

// GET /assistant/history?limit=
func (h *AssistantHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := h.auth.Me(ctx)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	turns, err := h.assistant.History(ctx, me, queryInt(c, "limit", defaultHistoryLimit))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"turns": turns})
}

// DELETE /assistant/state
func (h *AssistantHandler) ResetState(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := h.auth.Me(ctx)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.assistant.Reset(ctx, me); err != nil {
		h.log.Error("reset assistant state failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /assistant/settings
func (h *AssistantHandler) GetSettings(c *gin.Context) {
	mode, err := h.settings.GetAssistantMode(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mode": mode})
}

// PUT /assistant/settings
func (h *AssistantHandler) PutSettings(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.settings.SetAssistantMode(c.Request.Context(), req.Mode); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mode": req.Mode})
}
