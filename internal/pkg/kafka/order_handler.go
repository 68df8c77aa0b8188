package kafka

import (
	"CampusLink/internal/model"
	"CampusLink/internal/realtime"
	"CampusLink/internal/service"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// OrderHandler 消费点餐服务的订单事件
// 订单归属人落一条 ORDER 通知，并向其个人房间透传订单事件
type OrderHandler struct {
	notifService service.NotificationService
	bus          service.EventBus
}

func NewOrderHandler(notifService service.NotificationService, bus service.EventBus) *OrderHandler {
	return &OrderHandler{
		notifService: notifService,
		bus:          bus,
	}
}

func (s *OrderHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("order consumer setup")
	return nil
}

func (s *OrderHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("order consumer cleanup")
	return nil
}

func (s *OrderHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-order consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("process batch error", "err", err)
		return err
	}
	log.Info("topic-order consume claim end")
	return nil
}

// logic 处理单条订单事件
// 解析与校验失败是永久性错误，记录后跳过，避免毒丸消息卡死分区；
// 下游落库/推送失败返回错误走重试
func (s *OrderHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	event, err := ToDomainEvent(msg)
	if err != nil {
		log.Warn("malformed order event, skipped", "err", err)
		return nil
	}

	var payload OrderEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		log.Warn("malformed order payload, skipped", "type", event.Type, "err", err)
		return nil
	}
	if payload.UserID == 0 {
		log.Warn("order event without user_id, skipped", "type", event.Type)
		return nil
	}

	var wsEvent, title string
	switch event.Type {
	case EventTypeOrderCreated:
		wsEvent = realtime.EventNewOrder
		title = "订单已创建"
	case EventTypeOrderUpdated:
		wsEvent = realtime.EventOrderStatusUpdated
		title = "订单状态更新"
	case EventTypeOrderCanceled:
		wsEvent = realtime.EventOrderCancelled
		title = "订单已取消"
	default:
		log.Warn("unknown order event type, skipped", "type", event.Type)
		return nil
	}

	message := fmt.Sprintf("%s：%s", payload.ShopName, payload.Status)
	if _, err := s.notifService.Notify(ctx, payload.UserID, title, message, model.NotificationTypeOrder); err != nil {
		return err
	}

	// 订单事件透传，推送失败不回滚已落库的通知
	if err := s.bus.PublishToUser(ctx, payload.UserID, wsEvent, &payload); err != nil {
		log.Error("publish order event error", "userID", payload.UserID, "err", err)
	}
	return nil
}
