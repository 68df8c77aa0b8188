package handler

import (
	"CampusLink/internal/api/dto"
	"CampusLink/internal/pkg/consts"
	"CampusLink/internal/pkg/response"
	"CampusLink/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifService     service.NotificationService
	readStateService service.ReadStateService
}

func NewNotificationHandler(notifService service.NotificationService, readStateService service.ReadStateService) *NotificationHandler {
	return &NotificationHandler{
		notifService:     notifService,
		readStateService: readStateService,
	}
}

// List 获取通知列表
func (h *NotificationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	unreadOnly := c.Query("unread_only") == "true"
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > consts.MaxPageSize {
		pageSize = consts.DefaultPageSize
	}

	userID := c.GetUint64("user_id")
	list, err := h.notifService.List(c.Request.Context(), userID, unreadOnly, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetUnreadCount 获取未读数
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetUint64("user_id")

	count, err := h.readStateService.UnreadNotificationCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.NotificationUnreadDTO{UnreadCount: count})
}

// MarkRead 标记单条已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint64("user_id")
	notifID, err := strconv.ParseUint(c.Param("notification_id"), 10, 64)
	if err != nil || notifID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := h.notifService.MarkRead(c.Request.Context(), userID, notifID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 一键已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetUint64("user_id")
	if err := h.notifService.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Delete 删除单条通知
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetUint64("user_id")
	notifID, err := strconv.ParseUint(c.Param("notification_id"), 10, 64)
	if err != nil || notifID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := h.notifService.Delete(c.Request.Context(), userID, notifID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
