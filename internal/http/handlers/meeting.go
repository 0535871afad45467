package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type MeetingHandler struct {
	meetings services.MeetingService
}

func NewMeetingHandler(meetings services.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

// GET /meetings?upcoming=true
func (h *MeetingHandler) List(c *gin.Context) {
	rows, err := h.meetings.List(c.Request.Context(), queryBool(c, "upcoming"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"meetings": rows})
}

// POST /meetings
func (h *MeetingHandler) Schedule(c *gin.Context) {
	var req services.MeetingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	m, err := h.meetings.Schedule(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"meeting": m})
}

// POST /meetings/:id/cancel
func (h *MeetingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "invalid_meeting_id")
	if !ok {
		return
	}
	m, err := h.meetings.Cancel(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"meeting": m})
}
