package session

import "errors"

var (
	// ErrTableClosed 会话表已关闭
	ErrTableClosed = errors.New("session: table closed")

	// ErrTooManySessions 会话数量已达上限
	ErrTooManySessions = errors.New("session: too many active sessions")

	// ErrNoSession 对端没有活跃会话
	ErrNoSession = errors.New("session: no active session for peer")
)
