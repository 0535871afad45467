package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /reports/students/:id/performance
func (h *ReportHandler) Performance(c *gin.Context) {
	studentID, ok := pathID(c, "invalid_student_id")
	if !ok {
		return
	}
	rep, err := h.reports.StudentPerformance(c.Request.Context(), studentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": rep})
}

// POST /reports/students/:id/send
// The body is optional; without an email the guardian on file receives it.
func (h *ReportHandler) Send(c *gin.Context) {
	studentID, ok := pathID(c, "invalid_student_id")
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sent, err := h.reports.SendPerformanceReport(c.Request.Context(), studentID, strings.TrimSpace(req.Email))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"sent_report": sent})
}

// GET /reports/sent?student_id=
func (h *ReportHandler) ListSent(c *gin.Context) {
	studentID, err := queryUUID(c, "student_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}
	rows, err := h.reports.ListSent(c.Request.Context(), studentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sent_reports": rows})
}
