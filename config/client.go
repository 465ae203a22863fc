package config

import (
	"github.com/artikcloud/leshan/pkg/types"
)

// ClientConfig 客户端角色配置
type ClientConfig struct {
	// EndpointName 注册时使用的端点名
	EndpointName string `json:"endpoint_name,omitempty" yaml:"endpoint_name,omitempty"`

	// Objects 客户端暴露的对象集合，nil 表示使用默认集合
	Objects *types.ObjectSet `json:"objects,omitempty" yaml:"objects,omitempty"`

	// Attributes 注册请求附加属性
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// DefaultClientConfig 返回默认客户端配置
func DefaultClientConfig() ClientConfig {
	return ClientConfig{}
}

// ResolvedObjects 返回对象集合，未设置时返回 scheme 对应的默认集合
func (c ClientConfig) ResolvedObjects(scheme string) *types.ObjectSet {
	if c.Objects == nil {
		return types.DefaultClientObjectsFor(scheme)
	}
	return c.Objects
}

// Validate 验证客户端配置
func (c ClientConfig) Validate() error {
	if c.EndpointName == "" {
		return types.ErrEmptyEndpointName
	}
	return nil
}
