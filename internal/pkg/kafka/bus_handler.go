package kafka

import (
	"CampusLink/internal/model"
	"CampusLink/internal/pkg/consts"
	"CampusLink/internal/realtime"
	"CampusLink/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// BusScheduleHandler 消费班车服务的事件
// 紧急事件按角色通知运营与超管，普通告警按事件携带的目标用户群发
type BusScheduleHandler struct {
	notifService service.NotificationService
	bus          service.EventBus
}

func NewBusScheduleHandler(notifService service.NotificationService, bus service.EventBus) *BusScheduleHandler {
	return &BusScheduleHandler{
		notifService: notifService,
		bus:          bus,
	}
}

func (s *BusScheduleHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("bus consumer setup")
	return nil
}

func (s *BusScheduleHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("bus consumer cleanup")
	return nil
}

func (s *BusScheduleHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-bus consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("process batch error", "err", err)
		return err
	}
	log.Info("topic-bus consume claim end")
	return nil
}

// logic 处理单条班车事件
// 解析与校验失败是永久性错误，记录后跳过，避免毒丸消息卡死分区；
// 下游落库/推送失败返回错误走重试
func (s *BusScheduleHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	event, err := ToDomainEvent(msg)
	if err != nil {
		log.Warn("malformed bus event, skipped", "err", err)
		return nil
	}

	var payload BusEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		log.Warn("malformed bus payload, skipped", "type", event.Type, "err", err)
		return nil
	}
	if payload.Message == "" {
		log.Warn("bus event without message, skipped", "type", event.Type)
		return nil
	}

	switch event.Type {
	case EventTypeBusEmergency:
		roles := []string{consts.RoleBusOperator, consts.RoleSuperAdmin}
		if _, err := s.notifService.NotifyByRole(ctx, roles, "班车紧急事件", payload.Message, model.NotificationTypeBusAlert); err != nil {
			return err
		}
		if err := s.bus.PublishToRoles(ctx, roles, realtime.EventBusEmergency, &payload); err != nil {
			log.Error("publish bus emergency error", "err", err)
		}
	case EventTypeBusAlert:
		if len(payload.Recipients) == 0 {
			log.Warn("bus alert without recipients, skipped", "route", payload.RouteName)
			return nil
		}
		if err := s.notifService.NotifyMany(ctx, payload.Recipients, "班车提醒", payload.Message, model.NotificationTypeBusAlert); err != nil {
			return err
		}
		for _, userID := range payload.Recipients {
			if err := s.bus.PublishToUser(ctx, userID, realtime.EventBusAlert, &payload); err != nil {
				log.Error("publish bus alert error", "userID", userID, "err", err)
			}
		}
	default:
		log.Warn("unknown bus event type, skipped", "type", event.Type)
	}
	return nil
}
