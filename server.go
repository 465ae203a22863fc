package leshan

import "github.com/artikcloud/leshan/pkg/types"

// Server LwM2M 服务端实例
type Server struct {
	*instance
}

// NewServer 创建服务端并绑定端点
func NewServer(opts ...Option) (*Server, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}
	inst, err := newInstance(types.RoleServer, o)
	if err != nil {
		return nil, err
	}
	return &Server{instance: inst}, nil
}
