package identity

import (
	"go.uber.org/fx"
)

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Resolver 身份解析器
	Resolver *Resolver
}

// ProvideServices 提供模块服务
func ProvideServices() ModuleOutput {
	return ModuleOutput{Resolver: NewResolver()}
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	Name        = "identity"
	Description = "对端身份解析模块，把传输层凭证解析为 PeerIdentity"
)
