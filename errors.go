package leshan

import "errors"

var (
	// ErrAlreadyStarted 实例已启动
	ErrAlreadyStarted = errors.New("leshan: already started")

	// ErrClosed 实例已关闭
	ErrClosed = errors.New("leshan: closed")
)
