package realtime

import (
	"CampusLink/internal/repository"
	"context"
	log "log/slog"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Publisher 房间投递抽象：实现方可以是本进程 Hub，也可以是共享总线
type Publisher interface {
	Publish(ctx context.Context, room string, frame []byte) error
}

// Bus 事件扇出总线
// 将结构化受众（会话 / 单用户 / 角色谓词）解析为房间集合后各发布一次。
// 投递是易失路径：不重试不排队，落库数据才是事实来源。
type Bus struct {
	pub       Publisher
	rolesRepo repository.UserRolesRepo
}

func NewBus(pub Publisher, rolesRepo repository.UserRolesRepo) *Bus {
	return &Bus{pub: pub, rolesRepo: rolesRepo}
}

// PublishToConversation 向会话房间发布事件
func (b *Bus) PublishToConversation(ctx context.Context, convID uint64, event string, payload interface{}) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	return b.pub.Publish(ctx, ConversationRoom(convID), frame)
}

// PublishToUser 向用户个人房间发布事件
func (b *Bus) PublishToUser(ctx context.Context, userID uint64, event string, payload interface{}) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	return b.pub.Publish(ctx, UserRoom(userID), frame)
}

// PublishToRoles 按角色谓词扇出
// 实时解析持有角色的用户集合，逐个发布到各自的个人房间，
// 不使用共享角色房间，避免角色变更后的旧成员泄漏。
// 零命中不是错误，降级为零接收者。
func (b *Bus) PublishToRoles(ctx context.Context, roleNames []string, event string, payload interface{}) error {
	userIDs, err := b.rolesRepo.GetUserIDsByRoles(ctx, roleNames)
	if err != nil {
		return errors.Wrap(err, "resolve role audience")
	}

	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	for _, uid := range userIDs {
		if err := b.pub.Publish(ctx, UserRoom(uid), frame); err != nil {
			// 单接收者投递失败互不影响
			log.Warn("publish to user room failed", "userID", uid, "event", event, "err", err)
		}
	}
	return nil
}

func encodeFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(&Frame{Event: event, Payload: payload})
	if err != nil {
		return nil, errors.Wrap(err, "encode event frame")
	}
	return data, nil
}
