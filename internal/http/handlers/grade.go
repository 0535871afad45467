package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type GradeHandler struct {
	grades services.GradeService
}

func NewGradeHandler(grades services.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// GET /students/:id/grades
func (h *GradeHandler) ListForStudent(c *gin.Context) {
	studentID, ok := pathID(c, "invalid_student_id")
	if !ok {
		return
	}
	rows, err := h.grades.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"grades": rows})
}

// GET /students/:id/grades/summary
func (h *GradeHandler) Summary(c *gin.Context) {
	studentID, ok := pathID(c, "invalid_student_id")
	if !ok {
		return
	}
	sum, err := h.grades.Summary(c.Request.Context(), studentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": sum})
}

// POST /grades
func (h *GradeHandler) Create(c *gin.Context) {
	var req services.GradeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	g, err := h.grades.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"grade": g})
}

// PUT /grades/:id
func (h *GradeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "invalid_grade_id")
	if !ok {
		return
	}
	var req services.GradeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	g, err := h.grades.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"grade": g})
}

// DELETE /grades/:id
func (h *GradeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_grade_id")
	if !ok {
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
