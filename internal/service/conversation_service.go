package service

import (
	"CampusLink/internal/api/dto"
	"CampusLink/internal/model"
	"CampusLink/internal/realtime"
	"CampusLink/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
)

// directHistoryPageSize 限定单聊详情一次返回的历史窗口：
// 取最近的 N 条（升序），更早的历史走 ListMessages 的 before_id 游标
const directHistoryPageSize = 500

// EventBus 事件扇出总线接口，构造时注入，组件不感知具体传输实现
type EventBus interface {
	PublishToConversation(ctx context.Context, convID uint64, event string, payload interface{}) error
	PublishToUser(ctx context.Context, userID uint64, event string, payload interface{}) error
	PublishToRoles(ctx context.Context, roleNames []string, event string, payload interface{}) error
}

// ConversationService 会话服务接口定义
type ConversationService interface {
	GetOrCreateDirect(ctx context.Context, userID, targetUserID uint64) (*model.Conversation, error)
	GetDirectWithHistory(ctx context.Context, userID, targetUserID uint64) (*dto.DirectConversationDTO, error)
	CreateGroup(ctx context.Context, creatorID uint64, name string, memberIDs []uint64, imageURL string) (*dto.ConversationDTO, error)
	PostMessage(ctx context.Context, convID, senderID uint64, content string) (*dto.MessageDTO, error)
	ListInbox(ctx context.Context, userID uint64) ([]*dto.ConversationSummaryDTO, error)
	ListMessages(ctx context.Context, convID, userID, beforeID uint64, limit int) ([]*dto.MessageDTO, error)
	MarkRead(ctx context.Context, convID, userID uint64) error
	AuthorizeJoin(ctx context.Context, convID, userID uint64) error
}

type conversationServiceImpl struct {
	convRepo    repository.ConversationRepo
	messageRepo repository.MessageRepo
	userRepo    repository.UserRepo
	bus         EventBus
}

func NewConversationService(
	convRepo repository.ConversationRepo,
	messageRepo repository.MessageRepo,
	userRepo repository.UserRepo,
	bus EventBus,
) ConversationService {
	return &conversationServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		bus:         bus,
	}
}

// GetOrCreateDirect 获取或创建单聊会话
// 两端并发发起时由 peer_key 唯一索引定序：撞到重复键的一方回查并复用已有会话
func (s *conversationServiceImpl) GetOrCreateDirect(ctx context.Context, userID, targetUserID uint64) (*model.Conversation, error) {
	if userID == targetUserID {
		return nil, ErrSelfConversation
	}

	exists, err := s.userRepo.Exists(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTargetUserInvalid
	}

	peerKey := buildPeerKey(userID, targetUserID)

	conv, err := s.convRepo.GetConversationByPeerKey(ctx, peerKey)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	newConv := &model.Conversation{
		IsGroup: false,
		PeerKey: peerKey,
	}
	members := []*model.ConversationMember{
		{UserID: userID, Role: model.MemberRoleAdmin, LastReadAt: now},
		{UserID: targetUserID, Role: model.MemberRoleMember, LastReadAt: now},
	}

	if err := s.convRepo.CreateConversation(ctx, newConv, members); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 对端并发创建抢先，回查复用
			return s.convRepo.GetConversationByPeerKey(ctx, peerKey)
		}
		return nil, err
	}
	return newConv, nil
}

// GetDirectWithHistory 获取单聊会话及最近一窗历史，并附带标记已读的副作用
func (s *conversationServiceImpl) GetDirectWithHistory(ctx context.Context, userID, targetUserID uint64) (*dto.DirectConversationDTO, error) {
	conv, err := s.GetOrCreateDirect(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListMessages(ctx, conv.ID, 0, directHistoryPageSize)
	if err != nil {
		return nil, err
	}

	if err := s.convRepo.MarkRead(ctx, conv.ID, userID, time.Now()); err != nil {
		return nil, err
	}

	res := &dto.DirectConversationDTO{
		ConversationID: conv.ID,
		PeerID:         targetUserID,
		Messages:       make([]*dto.MessageDTO, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, toMessageDTO(m))
	}
	return res, nil
}

// CreateGroup 创建群聊，创建者为 ADMIN，其余成员为 MEMBER
func (s *conversationServiceImpl) CreateGroup(ctx context.Context, creatorID uint64, name string, memberIDs []uint64, imageURL string) (*dto.ConversationDTO, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrGroupNameEmpty
	}
	if len(memberIDs) == 0 {
		return nil, ErrGroupMembersEmpty
	}

	now := time.Now()
	members := []*model.ConversationMember{
		{UserID: creatorID, Role: model.MemberRoleAdmin, LastReadAt: now},
	}
	seen := map[uint64]struct{}{creatorID: {}}
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, &model.ConversationMember{UserID: id, Role: model.MemberRoleMember, LastReadAt: now})
	}

	newConv := &model.Conversation{
		IsGroup:  true,
		Name:     name,
		ImageURL: imageURL,
	}
	if err := s.convRepo.CreateConversation(ctx, newConv, members); err != nil {
		return nil, err
	}
	return &dto.ConversationDTO{
		ConversationID: newConv.ID,
		IsGroup:        newConv.IsGroup,
		Name:           newConv.Name,
		ImageURL:       newConv.ImageURL,
		CreatedAt:      newConv.CreatedAt,
	}, nil
}

// PostMessage 发送消息
// 落库成功即成功；实时推送是尽力而为的延迟优化，失败仅记录日志
func (s *conversationServiceImpl) PostMessage(ctx context.Context, convID, senderID uint64, content string) (*dto.MessageDTO, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentEmpty
	}

	if _, err := s.convRepo.GetConversation(ctx, convID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	isMember, err := s.convRepo.IsMember(ctx, convID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotMember
	}

	now := time.Now()
	msg := &model.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      now,
	}
	if err := s.messageRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	// 发送视同已读到本条，同时刷新会话活跃时间用于收件箱排序
	if err := s.convRepo.MarkRead(ctx, convID, senderID, now); err != nil {
		log.ErrorContext(ctx, "failed to advance sender read marker", "convID", convID, "senderID", senderID, "err", err)
	}
	if err := s.convRepo.TouchLastMessage(ctx, convID, content, senderID, now); err != nil {
		log.ErrorContext(ctx, "failed to touch conversation", "convID", convID, "err", err)
	}

	res := toMessageDTO(msg)
	event := &dto.NewMessageEventDTO{ConversationID: convID, Message: res}
	if err := s.bus.PublishToConversation(ctx, convID, realtime.EventNewMessage, event); err != nil {
		log.WarnContext(ctx, "new-message push failed", "convID", convID, "err", err)
	}

	return res, nil
}

// ListInbox 获取收件箱：每个所属会话一条摘要，按活跃时间倒序
func (s *conversationServiceImpl) ListInbox(ctx context.Context, userID uint64) ([]*dto.ConversationSummaryDTO, error) {
	members, err := s.convRepo.GetUserConversationMemList(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 批量补全单聊对端信息
	peerIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		if !m.Conversation.IsGroup {
			if peerID, err := parsePeerID(m.Conversation.PeerKey, userID); err == nil {
				peerIDs = append(peerIDs, peerID)
			}
		}
	}
	peers, err := s.userRepo.GetSimpleByIDs(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationSummaryDTO, 0, len(members))
	for _, m := range members {
		d := &dto.ConversationSummaryDTO{
			ConversationID: m.ConversationID,
			IsGroup:        m.Conversation.IsGroup,
			Name:           m.Conversation.Name,
			ImageURL:       m.Conversation.ImageURL,
			LastMsgContent: m.Conversation.LastMsgContent,
			LastSenderID:   m.Conversation.LastSenderID,
			LastMessageAt:  m.Conversation.LastMessageAt,
			Unread:         IsUnread(m.LastReadAt, m.Conversation.LastMessageAt),
		}

		if !m.Conversation.IsGroup {
			peerID, err := parsePeerID(m.Conversation.PeerKey, userID)
			if err == nil {
				d.PeerID = peerID
				if peer, ok := peers[peerID]; ok {
					d.PeerName = peer.Nickname
					d.PeerAvatarURL = peer.AvatarURL
				}
			}
		}
		res = append(res, d)
	}
	return res, nil
}

// ListMessages 拉取会话历史，仅成员可读
func (s *conversationServiceImpl) ListMessages(ctx context.Context, convID, userID, beforeID uint64, limit int) ([]*dto.MessageDTO, error) {
	if err := s.AuthorizeJoin(ctx, convID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListMessages(ctx, convID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageDTO(m))
	}
	return res, nil
}

// MarkRead 标记已读，幂等且不回退
func (s *conversationServiceImpl) MarkRead(ctx context.Context, convID, userID uint64) error {
	if err := s.AuthorizeJoin(ctx, convID, userID); err != nil {
		return err
	}
	return s.convRepo.MarkRead(ctx, convID, userID, time.Now())
}

// AuthorizeJoin 校验用户是否为会话成员，供 WS 加入房间与读路径复用
func (s *conversationServiceImpl) AuthorizeJoin(ctx context.Context, convID, userID uint64) error {
	isMember, err := s.convRepo.IsMember(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotMember
	}
	return nil
}

// buildPeerKey 生成单聊唯一标识，小 ID 在前保证无序对归一
func buildPeerKey(userID, targetUserID uint64) string {
	if userID < targetUserID {
		return fmt.Sprintf("%d_%d", userID, targetUserID)
	}
	return fmt.Sprintf("%d_%d", targetUserID, userID)
}

func parsePeerID(peerKey string, currentUserID uint64) (uint64, error) {
	var u1, u2 uint64
	_, err := fmt.Sscanf(peerKey, "%d_%d", &u1, &u2)
	if err != nil {
		return 0, err
	}
	if u1 == currentUserID {
		return u2, nil
	}
	return u1, nil
}

func toMessageDTO(m *model.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
