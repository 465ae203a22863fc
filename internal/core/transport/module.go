package transport

import (
	"go.uber.org/fx"

	"github.com/artikcloud/leshan/config"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/types"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config
	Role   types.Role

	// Factory 调用方提供的连接器工厂（可选，优先于内置工厂）
	Factory transportif.ConnectorFactory `name:"user_connector_factory" optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Factory transportif.ConnectorFactory
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) ModuleOutput {
	if input.Factory != nil {
		logger.Debug("使用调用方提供的连接器工厂")
		return ModuleOutput{Factory: input.Factory}
	}
	return ModuleOutput{
		Factory: NewFactory(input.Role, input.Config.Endpoint.ResolvedCarrier(), input.Config.Tuning),
	}
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	Name        = "transport"
	Description = "传输模块，按载体创建 UDP/DTLS、TCP/TLS、QUIC 连接器"
)
