package endpoint

import (
	"errors"

	"github.com/artikcloud/leshan/config"
)

var (
	// ErrNoActiveEndpoint 非安全端点和安全端点都被禁用
	ErrNoActiveEndpoint = config.ErrNoActiveEndpoint

	// ErrMissingSecurityIdentity 客户端对象集合缺少 Security 对象
	ErrMissingSecurityIdentity = errors.New("endpoint: security object is mandatory")

	// ErrNoConnectorFactory 未提供连接器工厂
	ErrNoConnectorFactory = errors.New("endpoint: no connector factory")

	// ErrEndpointClosed 端点已关闭
	ErrEndpointClosed = errors.New("endpoint: closed")

	// ErrAlreadyServing 端点已在服务中
	ErrAlreadyServing = errors.New("endpoint: already serving")
)
