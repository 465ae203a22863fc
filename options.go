package leshan

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/artikcloud/leshan/config"
	endpointif "github.com/artikcloud/leshan/pkg/interfaces/endpoint"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/types"
)

// Option 实例配置选项函数
//
// 选项按顺序应用：WithConfig / WithConfigFile 替换整个配置，
// 之后的端点、调优选项在其基础上修改。
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	// 调用方直接提供的组件，优先于配置
	security *securityif.Context
	factory  transportif.ConnectorFactory
	objects  *types.ObjectSet
	handler  endpointif.Handler

	registerer prometheus.Registerer
	fxDebug    bool
}

func newOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
//                              配置
// ============================================================================

// WithConfig 使用完整配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("leshan: nil config")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 或 YAML 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// ============================================================================
//                              端点
// ============================================================================

// WithCarrier 设置传输载体
func WithCarrier(carrier types.Carrier) Option {
	return func(o *options) error {
		if _, err := types.ParseCarrier(string(carrier)); err != nil {
			return err
		}
		o.config.Endpoint = o.config.Endpoint.WithCarrier(carrier)
		return nil
	}
}

// WithPlaintextAddr 设置非安全端点绑定地址
func WithPlaintextAddr(addr string) Option {
	return func(o *options) error {
		o.config.Endpoint = o.config.Endpoint.WithPlaintextAddr(addr)
		return nil
	}
}

// WithSecureAddr 设置安全端点绑定地址
func WithSecureAddr(addr string) Option {
	return func(o *options) error {
		o.config.Endpoint = o.config.Endpoint.WithSecureAddr(addr)
		return nil
	}
}

// WithPlaintext 启用或禁用非安全端点
func WithPlaintext(enabled bool) Option {
	return func(o *options) error {
		o.config.Endpoint = o.config.Endpoint.WithPlaintext(enabled)
		return nil
	}
}

// WithSecure 启用或禁用安全端点
func WithSecure(enabled bool) Option {
	return func(o *options) error {
		o.config.Endpoint = o.config.Endpoint.WithSecure(enabled)
		return nil
	}
}

// WithTuning 设置传输调优参数
//
// 未设置的字段使用角色默认值。
func WithTuning(tuning config.TuningConfig) Option {
	return func(o *options) error {
		o.config.Tuning = tuning
		return nil
	}
}

// ============================================================================
//                              组件
// ============================================================================

// WithSecurityContext 直接提供安全上下文，优先于配置中的安全材料
func WithSecurityContext(sec *securityif.Context) Option {
	return func(o *options) error {
		o.security = sec
		return nil
	}
}

// WithConnectorFactory 使用自定义连接器工厂
func WithConnectorFactory(f transportif.ConnectorFactory) Option {
	return func(o *options) error {
		o.factory = f
		return nil
	}
}

// WithHandler 设置入站交互处理器
func WithHandler(h endpointif.Handler) Option {
	return func(o *options) error {
		o.handler = h
		return nil
	}
}

// WithObjects 设置客户端对象集合（服务端忽略）
func WithObjects(objs *types.ObjectSet) Option {
	return func(o *options) error {
		o.objects = objs
		return nil
	}
}

// WithAttributes 设置客户端注册附加属性（服务端忽略）
func WithAttributes(attrs map[string]string) Option {
	return func(o *options) error {
		o.config.Client.Attributes = attrs
		return nil
	}
}

// WithRegistry 把指标注册到 reg
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithFxDebug 输出 Fx 依赖注入日志
func WithFxDebug() Option {
	return func(o *options) error {
		o.fxDebug = true
		return nil
	}
}
