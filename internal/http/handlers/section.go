package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SectionHandler struct {
	sections services.SectionService
	grades   services.GradeService
}

func NewSectionHandler(sections services.SectionService, grades services.GradeService) *SectionHandler {
	return &SectionHandler{sections: sections, grades: grades}
}

// GET /sections
func (h *SectionHandler) List(c *gin.Context) {
	rows, err := h.sections.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sections": rows})
}

// POST /sections
func (h *SectionHandler) Create(c *gin.Context) {
	var req services.SectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sec, err := h.sections.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"section": sec})
}

// GET /sections/:id
func (h *SectionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "invalid_section_id")
	if !ok {
		return
	}
	sec, err := h.sections.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"section": sec})
}

// PUT /sections/:id
func (h *SectionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "invalid_section_id")
	if !ok {
		return
	}
	var req services.SectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sec, err := h.sections.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"section": sec})
}

// DELETE /sections/:id
func (h *SectionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_section_id")
	if !ok {
		return
	}
	if err := h.sections.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /sections/:id/gradebook.xlsx
func (h *SectionHandler) Gradebook(c *gin.Context) {
	id, ok := pathID(c, "invalid_section_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sec, err := h.sections.Get(ctx, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.grades.ExportSectionXLSX(ctx, id, &buf); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-gradebook.xlsx"`, fileSlug(sec.Name)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func fileSlug(name string) string {
	s := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "section"
	}
	return s
}
