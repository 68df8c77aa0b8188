package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrContentEmpty         = errors.New("消息内容不能为空")
	ErrGroupNameEmpty       = errors.New("群聊名称不能为空")
	ErrGroupMembersEmpty    = errors.New("群聊成员不能为空")
	ErrSelfConversation     = errors.New("不能与自己创建会话")
	ErrTargetUserInvalid    = errors.New("目标用户无效")
	ErrNotMember            = errors.New("不是会话成员")
	ErrNotOwner             = errors.New("无权操作他人数据")
	ErrConversationNotFound = errors.New("会话不存在")
	ErrNotificationNotFound = errors.New("通知不存在")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrContentEmpty:         BadRequest,
	ErrGroupNameEmpty:       BadRequest,
	ErrGroupMembersEmpty:    BadRequest,
	ErrSelfConversation:     BadRequest,
	ErrTargetUserInvalid:    BadRequest,
	ErrNotMember:            Forbidden,
	ErrNotOwner:             Forbidden,
	ErrConversationNotFound: NotFound,
	ErrNotificationNotFound: NotFound,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}
