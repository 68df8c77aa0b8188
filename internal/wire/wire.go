package wire

import (
	"CampusLink/internal/api"
	"CampusLink/internal/api/config"
	"CampusLink/internal/api/handler"
	"CampusLink/internal/job"
	"CampusLink/internal/pkg/cron"
	"CampusLink/internal/pkg/kafka"
	"CampusLink/internal/realtime"
	"CampusLink/internal/repository"
	"CampusLink/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Hub          *realtime.Hub
	Bridge       *realtime.Bridge
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	convRepo := repository.NewConversationRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	notifRepo := repository.NewNotificationRepo(db)
	userRepo := repository.NewUserRepo(db)
	userRolesRepo := repository.NewUserRolesRepo(db)

	// 投递面：本进程 Hub + Redis 发布/订阅桥
	hub := realtime.NewHub()
	bridge := realtime.NewBridge(hub)
	bus := realtime.NewBus(realtime.NewRedisPublisher(), userRolesRepo)

	convService := service.NewConversationService(convRepo, messageRepo, userRepo, bus)
	notifService := service.NewNotificationService(notifRepo, userRolesRepo, bus)
	readStateService := service.NewReadStateService(notifRepo, convRepo)

	handlers := &api.HandlersGroup{
		ConversationHandler: handler.NewConversationHandler(convService, readStateService),
		NotificationHandler: handler.NewNotificationHandler(notifService, readStateService),
		EventHandler:        handler.NewEventHandler(notifService),
		WsHandler:           handler.NewWsHandler(hub, convService),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, notifService, bus)
	if err != nil {
		return nil, err
	}

	purgeJob := job.NewNotificationPurgeJob(notifRepo, cfg.NotificationKeep)
	cronMgr := cron.NewCronManager(purgeJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Hub:          hub,
		Bridge:       bridge,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
