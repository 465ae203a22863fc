package leshan

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/artikcloud/leshan/internal/core/endpoint"
	"github.com/artikcloud/leshan/internal/core/identity"
	"github.com/artikcloud/leshan/internal/core/metrics"
	"github.com/artikcloud/leshan/internal/core/security"
	"github.com/artikcloud/leshan/internal/core/transport"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var fxLogger = log.Logger("leshan/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入（配置、角色、调用方组件）
//  2. identity → metrics → security → transport
//  3. endpoint：在构建阶段完成端点引导
//
// 端点引导失败时 fx.New 返回的应用带有错误，不会留下已绑定的端点。
func buildFxApp(role types.Role, o *options, targets ...interface{}) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if role == types.RoleClient {
		if err := o.config.Client.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	modules := []fx.Option{
		fx.Supply(o.config, role),
		fx.Supply(&o.config.Security),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 调用方组件（可选）
	// ════════════════════════════════════════════════════════════════════════
	if o.security != nil {
		sec := o.security
		modules = append(modules, fx.Provide(fx.Annotate(
			func() *securityif.Context { return sec },
			fx.ResultTags(`name:"user_security_context"`),
		)))
	}
	if o.factory != nil {
		factory := o.factory
		modules = append(modules, fx.Provide(fx.Annotate(
			func() transportif.ConnectorFactory { return factory },
			fx.ResultTags(`name:"user_connector_factory"`),
		)))
	}
	if o.objects != nil {
		modules = append(modules, fx.Supply(o.objects))
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		identity.Module(),
		metrics.Module,
		security.Module(),
		transport.Module(),
		endpoint.Module(),
	)

	if len(targets) > 0 {
		modules = append(modules, fx.Populate(targets...))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. Fx 日志
	// ════════════════════════════════════════════════════════════════════════
	if o.fxDebug {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create fx logger: %w", err)
		}
		modules = append(modules, fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zl}
		}))
		fxLogger.Debug("启用 Fx 调试日志")
	} else {
		// 禁用 Fx 日志输出（避免干扰用户日志）
		modules = append(modules, fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}))
	}

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
