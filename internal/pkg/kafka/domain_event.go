package kafka

import "github.com/goccy/go-json"

// 协作方约定的事件类型
const (
	EventTypeOrderCreated  = "ORDER_CREATED"
	EventTypeOrderUpdated  = "ORDER_STATUS_UPDATED"
	EventTypeOrderCanceled = "ORDER_CANCELLED"
	EventTypeBusEmergency  = "BUS_EMERGENCY"
	EventTypeBusAlert      = "BUS_ALERT"
)

// DomainEvent 外部服务发布的领域事件信封，payload 按 type 再解析
type DomainEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OrderEventPayload 点餐服务的订单事件
type OrderEventPayload struct {
	OrderID  uint64 `json:"order_id"`
	UserID   uint64 `json:"user_id"`
	ShopName string `json:"shop_name"`
	Status   string `json:"status"`
}

// BusEventPayload 班车服务的事件
// Recipients 仅 BUS_ALERT 携带，为本次告警的目标用户
type BusEventPayload struct {
	RouteName  string   `json:"route_name"`
	Message    string   `json:"message"`
	Recipients []uint64 `json:"recipients"`
}
