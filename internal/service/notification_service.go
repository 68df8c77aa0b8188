package service

import (
	"CampusLink/internal/api/dto"
	"CampusLink/internal/model"
	"CampusLink/internal/realtime"
	"CampusLink/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// NotificationService 通知分发服务接口定义
// 唯一写入口：先落库，后尽力推送。落库失败向调用方传播，推送失败只记日志。
type NotificationService interface {
	Notify(ctx context.Context, userID uint64, title, message, typ string) (*dto.NotificationDTO, error)
	NotifyMany(ctx context.Context, userIDs []uint64, title, message, typ string) error
	NotifyByRole(ctx context.Context, roleNames []string, title, message, typ string) (int, error)

	List(ctx context.Context, userID uint64, unreadOnly bool, page, pageSize int) ([]*dto.NotificationDTO, error)
	MarkRead(ctx context.Context, userID, notificationID uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
	Delete(ctx context.Context, userID, notificationID uint64) error
}

type notificationServiceImpl struct {
	notifRepo repository.NotificationRepo
	rolesRepo repository.UserRolesRepo
	bus       EventBus
}

func NewNotificationService(
	notifRepo repository.NotificationRepo,
	rolesRepo repository.UserRolesRepo,
	bus EventBus,
) NotificationService {
	return &notificationServiceImpl{
		notifRepo: notifRepo,
		rolesRepo: rolesRepo,
		bus:       bus,
	}
}

// Notify 通知单个用户：持久化成功后向其个人房间推送
func (s *notificationServiceImpl) Notify(ctx context.Context, userID uint64, title, message, typ string) (*dto.NotificationDTO, error) {
	if userID == 0 || strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return nil, ErrParamInvalid
	}

	n := &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    normalizeType(typ),
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	d := toNotificationDTO(n)
	s.push(ctx, userID, d)
	return d, nil
}

// NotifyMany 批量通知：N 行一个事务落库（整批成败一致），逐个接收者独立推送
func (s *notificationServiceImpl) NotifyMany(ctx context.Context, userIDs []uint64, title, message, typ string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return ErrParamInvalid
	}
	if len(userIDs) == 0 {
		return nil
	}

	ns := make([]*model.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		ns = append(ns, &model.Notification{
			UserID:  uid,
			Title:   title,
			Message: message,
			Type:    normalizeType(typ),
		})
	}
	if err := s.notifRepo.CreateBatch(ctx, ns); err != nil {
		return err
	}

	for _, n := range ns {
		s.push(ctx, n.UserID, toNotificationDTO(n))
	}
	return nil
}

// NotifyByRole 按角色通知：调用时实时解析持有角色的用户集合后委托批量通知
// 零命中降级为零接收者，不算错误。返回实际通知人数。
func (s *notificationServiceImpl) NotifyByRole(ctx context.Context, roleNames []string, title, message, typ string) (int, error) {
	userIDs, err := s.rolesRepo.GetUserIDsByRoles(ctx, roleNames)
	if err != nil {
		return 0, err
	}
	if len(userIDs) == 0 {
		log.InfoContext(ctx, "role broadcast matched no users", "roles", roleNames)
		return 0, nil
	}
	if err := s.NotifyMany(ctx, userIDs, title, message, typ); err != nil {
		return 0, err
	}
	return len(userIDs), nil
}

// List 分页获取通知列表
func (s *notificationServiceImpl) List(ctx context.Context, userID uint64, unreadOnly bool, page, pageSize int) ([]*dto.NotificationDTO, error) {
	limit := pageSize
	offset := (page - 1) * pageSize

	list, err := s.notifRepo.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		res = append(res, toNotificationDTO(n))
	}
	return res, nil
}

// MarkRead 标记单条已读，仅限本人
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	n, err := s.getOwned(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return s.notifRepo.MarkRead(ctx, notificationID)
}

// MarkAllRead 一键已读
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

// Delete 删除通知（软删除），仅限本人
func (s *notificationServiceImpl) Delete(ctx context.Context, userID, notificationID uint64) error {
	if _, err := s.getOwned(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.notifRepo.SoftDelete(ctx, notificationID)
}

func (s *notificationServiceImpl) getOwned(ctx context.Context, userID, notificationID uint64) (*model.Notification, error) {
	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotOwner
	}
	return n, nil
}

// push 尽力而为的实时推送，失败不影响写入结果
func (s *notificationServiceImpl) push(ctx context.Context, userID uint64, d *dto.NotificationDTO) {
	if err := s.bus.PublishToUser(ctx, userID, realtime.EventNotification, d); err != nil {
		log.WarnContext(ctx, "notification push failed", "userID", userID, "notificationID", d.ID, "err", err)
	}
}

func normalizeType(typ string) string {
	switch typ {
	case model.NotificationTypeInfo, model.NotificationTypeWarning, model.NotificationTypeError,
		model.NotificationTypeSuccess, model.NotificationTypeBusAlert, model.NotificationTypeOrder:
		return typ
	default:
		return model.NotificationTypeInfo
	}
}

func toNotificationDTO(n *model.Notification) *dto.NotificationDTO {
	d := &dto.NotificationDTO{}
	_ = copier.Copy(d, n)
	return d
}
