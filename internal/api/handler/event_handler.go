package handler

import (
	"CampusLink/internal/api/dto"
	"CampusLink/internal/pkg/response"
	"CampusLink/internal/service"

	"github.com/gin-gonic/gin"
)

// EventHandler 管理端广播入口，供后台控制台按角色下发通知
type EventHandler struct {
	notifService service.NotificationService
}

func NewEventHandler(notifService service.NotificationService) *EventHandler {
	return &EventHandler{notifService: notifService}
}

// Broadcast 按角色广播通知
func (h *EventHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	count, err := h.notifService.NotifyByRole(c.Request.Context(), req.Roles, req.Title, req.Message, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"notified_count": count})
}
