package leshan

import (
	"maps"

	"github.com/artikcloud/leshan/internal/core/transport"
	"github.com/artikcloud/leshan/pkg/types"
)

// Client LwM2M 客户端实例
type Client struct {
	*instance

	endpointName string
	objects      *types.ObjectSet
	attributes   map[string]string
}

// NewClient 创建客户端并绑定端点
//
// endpointName 不能为空；对象集合未指定时使用默认集合，
// 且必须包含 Security 对象。
func NewClient(endpointName string, opts ...Option) (*Client, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}
	o.config.Client.EndpointName = endpointName

	objects := o.objects
	if objects == nil {
		objects = o.config.Client.ResolvedObjects(transport.Scheme(o.config.Endpoint.ResolvedCarrier(), false))
		o.objects = objects
	}

	inst, err := newInstance(types.RoleClient, o)
	if err != nil {
		return nil, err
	}
	return &Client{
		instance:     inst,
		endpointName: endpointName,
		objects:      objects,
		attributes:   maps.Clone(o.config.Client.Attributes),
	}, nil
}

// EndpointName 返回注册端点名
func (c *Client) EndpointName() string { return c.endpointName }

// Objects 返回客户端对象集合
func (c *Client) Objects() *types.ObjectSet { return c.objects }

// Attributes 返回注册附加属性
func (c *Client) Attributes() map[string]string { return maps.Clone(c.attributes) }
