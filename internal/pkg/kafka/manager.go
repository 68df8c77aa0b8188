package kafka

import (
	"CampusLink/internal/api/config"
	"CampusLink/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	orderConsumer sarama.ConsumerGroup
	orderHandler  sarama.ConsumerGroupHandler

	busConsumer sarama.ConsumerGroup
	busHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	notifService service.NotificationService,
	bus service.EventBus,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	orderConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaOrderTopic.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	orderHandler := NewOrderHandler(notifService, bus)

	busConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaBusTopic.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	busHandler := NewBusScheduleHandler(notifService, bus)

	return &ConsumerManager{
		orderConsumer: orderConsumer,
		orderHandler:  orderHandler,
		busConsumer:   busConsumer,
		busHandler:    busHandler,
	}, nil
}

// Start 启动所有消费者，阻塞直到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	// 启动 Order Consumer
	go func() {
		topic := cfg.KafkaOrderTopic.Topic
		log.Info("Order consumer started", "topic", topic)
		for {
			if err := m.orderConsumer.Consume(ctx, []string{topic}, m.orderHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	// 启动 Bus Consumer
	go func() {
		topic := cfg.KafkaBusTopic.Topic
		log.Info("Bus consumer started", "topic", topic)
		for {
			if err := m.busConsumer.Consume(ctx, []string{topic}, m.busHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	err := m.orderConsumer.Close()
	if err != nil {
		log.Error("Failed to close order consumer", "err", err)
	}
	err = m.busConsumer.Close()
	if err != nil {
		log.Error("Failed to close bus consumer", "err", err)
	}

	return nil
}
