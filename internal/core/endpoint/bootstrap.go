package endpoint

import (
	"net/netip"

	"github.com/artikcloud/leshan/config"
	"github.com/artikcloud/leshan/internal/core/identity"
	"github.com/artikcloud/leshan/internal/core/metrics"
	"github.com/artikcloud/leshan/internal/core/transport"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/types"
)

// ============================================================================
//                              引导参数
// ============================================================================

// Config 引导配置
//
// 只在 Build 中使用一次，之后由端点持有运行状态。
type Config struct {
	config.EndpointConfig

	// Security 安全端点的安全上下文；为 nil 时由连接器工厂报错
	Security *securityif.Context

	// Tuning 调优参数，调用方设置的值优先于角色默认值
	Tuning config.TuningConfig
}

// BuildOptions 引导选项
type BuildOptions struct {
	// Role 实例角色
	Role types.Role

	// Objects 客户端对象集合，服务端忽略
	Objects *types.ObjectSet

	// Resolver 身份解析器，nil 时使用默认解析器
	Resolver *identity.Resolver

	// Metrics 指标，可为 nil
	Metrics *metrics.Metrics
}

// ============================================================================
//                              Build
// ============================================================================

// Build 创建非安全与安全端点
//
// 返回的 Pair 至少包含一个端点。失败时不留下任何已绑定的端点。
// 连接器的绑定错误原样返回。
func Build(cfg Config, factory transportif.ConnectorFactory, opts BuildOptions) (*Pair, error) {
	if cfg.DisablePlaintext && cfg.DisableSecure {
		return nil, ErrNoActiveEndpoint
	}
	if factory == nil {
		return nil, ErrNoConnectorFactory
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	if opts.Role == types.RoleClient && !opts.Objects.Has(types.SecurityObjectID) {
		return nil, ErrMissingSecurityIdentity
	}

	var plainAddr, secureAddr netip.AddrPort
	var err error
	if !cfg.DisablePlaintext {
		if plainAddr, err = cfg.ResolvedPlaintextAddr(opts.Role); err != nil {
			return nil, err
		}
	}
	if !cfg.DisableSecure {
		if secureAddr, err = cfg.ResolvedSecureAddr(opts.Role); err != nil {
			return nil, err
		}
	}

	carrier := cfg.ResolvedCarrier()
	epOpts := Options{
		Tuning:   cfg.Tuning.ApplyDefaults(opts.Role),
		Resolver: opts.Resolver,
		Metrics:  opts.Metrics,
	}

	pair := &Pair{}

	if !cfg.DisablePlaintext {
		conn, err := factory.CreatePlaintext(plainAddr)
		if err != nil {
			logger.Warn("创建非安全端点失败", "addr", plainAddr, "err", err)
			return nil, err
		}
		pair.Plaintext = New(conn, transport.Scheme(carrier, false), epOpts)
		logger.Info("创建非安全端点", "scheme", pair.Plaintext.Scheme(), "addr", conn.LocalAddr())
	}

	if !cfg.DisableSecure {
		conn, err := factory.CreateSecure(secureAddr, cfg.Security)
		if err != nil {
			logger.Warn("创建安全端点失败", "addr", secureAddr, "err", err)
			if pair.Plaintext != nil {
				_ = pair.Plaintext.Close()
			}
			return nil, err
		}
		pair.Secure = New(conn, transport.Scheme(carrier, true), epOpts)
		logger.Info("创建安全端点", "scheme", pair.Secure.Scheme(), "addr", conn.LocalAddr())
	}

	return pair, nil
}
