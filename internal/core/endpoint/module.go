package endpoint

import (
	"context"

	"go.uber.org/fx"

	"github.com/artikcloud/leshan/config"
	"github.com/artikcloud/leshan/internal/core/identity"
	"github.com/artikcloud/leshan/internal/core/metrics"
	"github.com/artikcloud/leshan/internal/core/transport"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/types"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config   *config.Config
	Role     types.Role
	Factory  transportif.ConnectorFactory
	Resolver *identity.Resolver

	// Security 安全上下文，安全端点禁用时可为 nil
	Security *securityif.Context `name:"security_context" optional:"true"`

	// Objects 客户端对象集合（可选，优先于配置文件）
	Objects *types.ObjectSet `optional:"true"`

	// Metrics 指标（可选）
	Metrics *metrics.Metrics `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Pair *Pair
}

// ProvideServices 引导端点
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	objects := input.Objects
	if objects == nil && input.Role == types.RoleClient {
		objects = input.Config.Client.ResolvedObjects(transport.Scheme(input.Config.Endpoint.ResolvedCarrier(), false))
	}

	pair, err := Build(Config{
		EndpointConfig: input.Config.Endpoint,
		Security:       input.Security,
		Tuning:         input.Config.Tuning,
	}, input.Factory, BuildOptions{
		Role:     input.Role,
		Objects:  objects,
		Resolver: input.Resolver,
		Metrics:  input.Metrics,
	})
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Pair: pair}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("endpoint",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC   fx.Lifecycle
	Pair *Pair
}

// registerLifecycle 注册生命周期
//
// 端点在 ProvideServices 中已绑定，这里只负责关闭。
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info("端点关闭中")
			return input.Pair.Close()
		},
	})
}

// 模块元信息常量
const (
	Name        = "endpoint"
	Description = "端点引导模块，创建非安全与安全端点并为入站交互解析身份"
)
