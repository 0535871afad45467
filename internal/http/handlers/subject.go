package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type SubjectHandler struct {
	subjects services.SubjectService
}

func NewSubjectHandler(subjects services.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjects: subjects}
}

// GET /subjects
func (h *SubjectHandler) List(c *gin.Context) {
	rows, err := h.subjects.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subjects": rows})
}

// POST /subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req services.SubjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sub, err := h.subjects.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"subject": sub})
}

// DELETE /subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_subject_id")
	if !ok {
		return
	}
	if err := h.subjects.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
