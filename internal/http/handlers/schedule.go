package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

const defaultScheduleWindow = 7 * 24 * time.Hour

type ScheduleHandler struct {
	schedules services.ScheduleService
	now       func() time.Time
}

func NewScheduleHandler(schedules services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, now: time.Now}
}

// GET /schedules?from=&to=&tz=
// from defaults to the start of today and to to one week after from.
func (h *ScheduleHandler) List(c *gin.Context) {
	loc, err := queryLocation(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_timezone", err)
		return
	}
	from, ok, err := queryTime(c, "from", loc)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_from", err)
		return
	}
	if !ok {
		from = startOfDay(h.now().In(loc))
	}
	to, ok, err := queryTime(c, "to", loc)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_to", err)
		return
	}
	if !ok {
		to = from.Add(defaultScheduleWindow)
	}
	occ, err := h.schedules.ListRange(c.Request.Context(), from, to)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"from": from, "to": to, "occurrences": occ})
}

// GET /schedules/today?tz=
func (h *ScheduleHandler) Today(c *gin.Context) {
	loc, err := queryLocation(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_timezone", err)
		return
	}
	day := startOfDay(h.now().In(loc))
	occ, err := h.schedules.ForDay(c.Request.Context(), day)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"date": day.Format(time.DateOnly), "occurrences": occ})
}

// POST /schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req services.ScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"schedule": row})
}

// PUT /schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "invalid_schedule_id")
	if !ok {
		return
	}
	var req services.ScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.schedules.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"schedule": row})
}

// DELETE /schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_schedule_id")
	if !ok {
		return
	}
	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
