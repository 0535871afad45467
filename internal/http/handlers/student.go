package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

const maxImportBytes = 10 << 20

type StudentHandler struct {
	students services.StudentService
}

func NewStudentHandler(students services.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// GET /students?section_id=&q=&limit=&offset=
func (h *StudentHandler) List(c *gin.Context) {
	sectionID, err := queryUUID(c, "section_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_section_id", err)
		return
	}
	rows, err := h.students.List(c.Request.Context(), repos.StudentFilter{
		SectionID: sectionID,
		Query:     strings.TrimSpace(c.Query("q")),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"students": rows})
}

// POST /students
func (h *StudentHandler) Create(c *gin.Context) {
	var req services.StudentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	st, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"student": st})
}

// GET /students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "invalid_student_id")
	if !ok {
		return
	}
	st, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"student": st})
}

// PUT /students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "invalid_student_id")
	if !ok {
		return
	}
	var req services.StudentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	st, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"student": st})
}

// DELETE /students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_student_id")
	if !ok {
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /students/import (multipart: file, optional section_id)
func (h *StudentHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_type", errors.New("expected an .xlsx file"))
		return
	}
	sectionID, err := formUUID(c, "section_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_section_id", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	defer f.Close()

	res, err := h.students.ImportXLSX(c.Request.Context(), f, sectionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"import": res})
}
