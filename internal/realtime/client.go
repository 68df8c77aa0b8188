package realtime

import (
	log "log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBufferSize = 256
)

// JoinAuthorizer 校验当前用户能否加入指定会话房间
type JoinAuthorizer func(convID uint64) error

// Client 一条活跃的 WebSocket 连接
type Client struct {
	UserID uint64

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	authorize JoinAuthorizer
	closeOnce sync.Once
}

func NewClient(hub *Hub, userID uint64, conn *websocket.Conn, authorize JoinAuthorizer) *Client {
	return &Client{
		UserID:    userID,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		authorize: authorize,
	}
}

// Run 启动读写泵，阻塞直到连接关闭
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump 读循环：处理 join-room / leave-room 控制消息，感知断开
func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleControl(data)
	}
}

func (c *Client) handleControl(data []byte) {
	var req ControlReq
	if err := json.Unmarshal(data, &req); err != nil {
		log.Warn("invalid ws control message", "userID", c.UserID, "err", err)
		return
	}

	convID, err := strconv.ParseUint(req.Room, 10, 64)
	if err != nil || convID == 0 {
		log.Warn("invalid ws room", "userID", c.UserID, "room", req.Room)
		return
	}

	switch req.Action {
	case ActionJoinRoom:
		if c.authorize != nil {
			if err := c.authorize(convID); err != nil {
				log.Warn("ws join rejected", "userID", c.UserID, "convID", convID, "err", err)
				return
			}
		}
		c.hub.Join(c, ConversationRoom(convID))
	case ActionLeaveRoom:
		c.hub.Leave(c, ConversationRoom(convID))
	}
}

// writePump 写循环：从发送缓冲推送至客户端并维持心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close 幂等关闭：先从注册表摘除，再关闭底层连接
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.OnDisconnect(c)
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
