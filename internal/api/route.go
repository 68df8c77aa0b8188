package api

import (
	"CampusLink/internal/api/middleware"
	"CampusLink/internal/pkg/consts"
	"CampusLink/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		wsGroup := apiGroup.Group("/ws")
		{
			// WS 自行完成 token 鉴权（浏览器 WebSocket 无法带 Header）
			wsGroup.GET("", group.WsHandler.Connect)
		}

		convGroup := apiGroup.Group("/conversations")
		convGroup.Use(middleware.AuthMiddleware())
		{
			convGroup.GET("", group.ConversationHandler.ListInbox)
			convGroup.GET("/unread/count", group.ConversationHandler.GetUnreadCount)
			convGroup.GET("/direct/:other_user_id", group.ConversationHandler.GetDirect)
			convGroup.POST("/group", group.ConversationHandler.CreateGroup)
			convGroup.GET("/:conversation_id/messages", group.ConversationHandler.ListMessages)
			convGroup.POST("/:conversation_id/messages", group.ConversationHandler.PostMessage)
			convGroup.POST("/:conversation_id/read", group.ConversationHandler.MarkRead)
		}

		notifGroup := apiGroup.Group("/notifications")
		notifGroup.Use(middleware.AuthMiddleware())
		{
			notifGroup.GET("", group.NotificationHandler.List)
			notifGroup.GET("/count", group.NotificationHandler.GetUnreadCount)
			notifGroup.PUT("/:notification_id/read", group.NotificationHandler.MarkRead)
			notifGroup.PUT("/read-all", group.NotificationHandler.MarkAllRead)
			notifGroup.DELETE("/:notification_id", group.NotificationHandler.Delete)
		}

		// 需要登录 & 拥有管理角色
		eventGroup := apiGroup.Group("/events")
		eventGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleAdmin, consts.RoleSuperAdmin))
		{
			eventGroup.POST("/broadcast", group.EventHandler.Broadcast)
		}
	}

	return r
}
