package consts

const (
	// RoomChannelKey 房间广播频道前缀，后接房间名（conv:<id> / user:<id>）
	RoomChannelKey = "room:"
)
