package realtime

import "strconv"

// 服务端推送事件名
const (
	EventNewMessage         = "new-message"
	EventNotification       = "notification"
	EventNewOrder           = "new-order"
	EventOrderStatusUpdated = "order-status-updated"
	EventOrderCancelled     = "order-cancelled"
	EventBusEmergency       = "bus-emergency"
	EventBusAlert           = "bus-alert"
	EventNewPost            = "new-post"
	EventNewStory           = "new-story"
)

// 客户端控制事件
const (
	ActionJoinRoom  = "join-room"
	ActionLeaveRoom = "leave-room"
)

// Frame 统一推送帧：事件名 + JSON 负载
type Frame struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// ControlReq 客户端控制消息，room 为会话 ID
type ControlReq struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// ConversationRoom 会话广播房间名
func ConversationRoom(convID uint64) string {
	return "conv:" + strconv.FormatUint(convID, 10)
}

// UserRoom 用户个人房间名，连接建立时自动加入
func UserRoom(userID uint64) string {
	return "user:" + strconv.FormatUint(userID, 10)
}
