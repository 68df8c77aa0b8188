package realtime

import (
	log "log/slog"
	"sync"
)

// Hub 在线状态注册表：维护每个连接加入的房间集合
// 连接的房间集合 = 显式 join 的并集 - 显式 leave，断开时整体清空
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
	}
}

// Join 将连接加入房间
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}

	if h.clients[c] == nil {
		h.clients[c] = make(map[string]struct{})
	}
	h.clients[c][room] = struct{}{}
}

// Leave 将连接移出房间
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, room)
}

// OnDisconnect 连接断开时原子清空其全部房间，保证不再向死连接投递
func (h *Hub) OnDisconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.clients[c] {
		h.removeLocked(c, room)
	}
	delete(h.clients, c)
}

func (h *Hub) removeLocked(c *Client, room string) {
	if m := h.rooms[room]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.rooms, room)
		}
	}
	if rs := h.clients[c]; rs != nil {
		delete(rs, room)
	}
}

// Deliver 将一帧数据投递给房间内的每个在线连接，每次调用每连接至多一次
// 返回实际投递的连接数；未连接的接收者依赖落库数据
func (h *Hub) Deliver(room string, frame []byte) int {
	// 持读锁期间投递（非阻塞），与 OnDisconnect 的摘除互斥，
	// 避免向已关闭的发送缓冲写入
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.rooms[room] {
		select {
		case c.send <- frame:
			delivered++
		default:
			// 发送缓冲打满视为慢消费者，踢下线走轮询兜底
			log.Warn("client send buffer full, closing", "userID", c.UserID, "room", room)
			go c.Close()
		}
	}
	return delivered
}

// RoomCount 房间当前在线连接数
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
