package handler

import (
	"CampusLink/internal/pkg/response"
	"CampusLink/internal/pkg/security"
	"CampusLink/internal/realtime"
	"CampusLink/internal/service"
	"context"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	hub         *realtime.Hub
	convService service.ConversationService
}

func NewWsHandler(hub *realtime.Hub, convService service.ConversationService) *WsHandler {
	return &WsHandler{hub: hub, convService: convService}
}

// Connect 建立 WebSocket 连接
// 连接后自动加入用户个人房间；会话房间由客户端 join-room 显式加入，加入前校验成员身份
func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	authorize := func(convID uint64) error {
		return s.convService.AuthorizeJoin(context.Background(), convID, userID)
	}

	client := realtime.NewClient(s.hub, userID, conn, authorize)
	s.hub.Join(client, realtime.UserRoom(userID))

	log.Info("用户 WS 连接已建立", "userID", userID)
	client.Run()
	log.Info("用户 WS 连接已断开", "userID", userID)
}
