package realtime

import (
	"CampusLink/internal/pkg/consts"
	"CampusLink/internal/pkg/redis"
	"context"
	log "log/slog"
	"strings"
)

// RedisPublisher 通过 Redis 频道发布房间帧
// 单进程部署时只有本进程的 Bridge 订阅；水平扩容时各进程共享同一批频道，
// 这是扇出层的横向扩展点。
type RedisPublisher struct{}

func NewRedisPublisher() *RedisPublisher {
	return &RedisPublisher{}
}

func (p *RedisPublisher) Publish(ctx context.Context, room string, frame []byte) error {
	return redis.Publish(ctx, consts.RoomChannelKey+room, frame)
}

// Bridge 订阅房间频道并转发到本进程 Hub
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

// Run 阻塞运行直到 ctx 取消
func (b *Bridge) Run(ctx context.Context) error {
	pubsub := redis.PSubscribe(ctx, consts.RoomChannelKey+"*")
	defer func() {
		_ = pubsub.Close()
	}()

	log.Info("realtime bridge started", "pattern", consts.RoomChannelKey+"*")

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			room := strings.TrimPrefix(msg.Channel, consts.RoomChannelKey)
			b.hub.Deliver(room, []byte(msg.Payload))
		case <-ctx.Done():
			log.Info("realtime bridge stopping...")
			return nil
		}
	}
}
