package security

import (
	"go.uber.org/fx"

	"github.com/artikcloud/leshan/config"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/lib/log"
)

var logger = log.Logger("core/security")

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 文件形式的安全配置（可选）
	Config *config.SecurityConfig `optional:"true"`

	// Context 调用方直接提供的安全上下文（可选，优先于 Config）
	Context *securityif.Context `name:"user_security_context" optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Context 安全端点使用的安全上下文，可能为 nil
	Context *securityif.Context `name:"security_context"`
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	if input.Context != nil {
		logger.Debug("使用调用方提供的安全上下文", "mode", input.Context.Mode())
		return ModuleOutput{Context: input.Context}, nil
	}

	cfg := config.DefaultSecurityConfig()
	if input.Config != nil {
		cfg = *input.Config
	}

	sec, err := ContextFromConfig(cfg)
	if err != nil {
		return ModuleOutput{}, err
	}
	logger.Debug("安全上下文已加载", "mode", sec.Mode())
	return ModuleOutput{Context: sec}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("security",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	Name        = "security"
	Description = "安全模块，把安全上下文转换为 DTLS/TLS 握手配置"
)
