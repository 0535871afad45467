package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type MessageHandler struct {
	messages services.MessageService
}

func NewMessageHandler(messages services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// GET /messages?student_id=&limit=
func (h *MessageHandler) List(c *gin.Context) {
	studentID, err := queryUUID(c, "student_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}
	rows, err := h.messages.List(c.Request.Context(), repos.MessageFilter{
		StudentID: studentID,
		Limit:     queryInt(c, "limit", 0),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": rows})
}

// POST /messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req services.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"message": msg})
}

// POST /messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "invalid_message_id")
	if !ok {
		return
	}
	if err := h.messages.MarkRead(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type NotificationHandler struct {
	notifications services.NotificationService
}

func NewNotificationHandler(notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GET /notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	rows, err := h.notifications.List(c.Request.Context(), queryBool(c, "unread"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": rows})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "invalid_notification_id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type CommunicationHandler struct {
	communications services.CommunicationService
}

func NewCommunicationHandler(communications services.CommunicationService) *CommunicationHandler {
	return &CommunicationHandler{communications: communications}
}

// GET /communications/bulk
func (h *CommunicationHandler) List(c *gin.Context) {
	rows, err := h.communications.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"communications": rows})
}

// POST /communications/bulk
func (h *CommunicationHandler) SendBulk(c *gin.Context) {
	var req services.BulkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	comm, err := h.communications.SendBulk(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"communication": comm})
}
