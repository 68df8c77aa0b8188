package handler

import (
	"CampusLink/internal/api/dto"
	"CampusLink/internal/pkg/consts"
	"CampusLink/internal/pkg/response"
	"CampusLink/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	convService      service.ConversationService
	readStateService service.ReadStateService
}

func NewConversationHandler(convService service.ConversationService, readStateService service.ReadStateService) *ConversationHandler {
	return &ConversationHandler{
		convService:      convService,
		readStateService: readStateService,
	}
}

// ListInbox 获取收件箱
func (h *ConversationHandler) ListInbox(c *gin.Context) {
	userID := c.GetUint64("user_id")

	res, err := h.convService.ListInbox(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetDirect 获取或创建单聊会话，返回全量历史并标记已读
func (h *ConversationHandler) GetDirect(c *gin.Context) {
	userID := c.GetUint64("user_id")
	targetID, err := strconv.ParseUint(c.Param("other_user_id"), 10, 64)
	if err != nil || targetID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.convService.GetDirectWithHistory(c.Request.Context(), userID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// CreateGroup 创建群聊
func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	creatorID := c.GetUint64("user_id")
	conv, err := h.convService.CreateGroup(c.Request.Context(), creatorID, req.Name, req.Members, req.ImageURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conv)
}

// ListMessages 拉取会话历史
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID := c.GetUint64("user_id")
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	beforeID, _ := strconv.ParseUint(c.Query("before_id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > consts.MaxPageSize {
		limit = consts.DefaultPageSize
	}

	res, err := h.convService.ListMessages(c.Request.Context(), convID, userID, beforeID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// PostMessage 发送消息
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	userID := c.GetUint64("user_id")
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.convService.PostMessage(c.Request.Context(), convID, userID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MarkRead 标记会话已读
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint64("user_id")
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := h.convService.MarkRead(c.Request.Context(), convID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetUnreadCount 获取未读会话数
func (h *ConversationHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetUint64("user_id")

	count, err := h.readStateService.UnreadConversationCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ConversationUnreadDTO{UnreadCount: count})
}
