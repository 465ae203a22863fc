package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	// Registerer 调用方提供的注册器（可选），未提供时指标不对外注册
	Registerer prometheus.Registerer `optional:"true"`
}

// NewFromParams 从参数创建 Metrics
func NewFromParams(p Params) (*Metrics, error) {
	return New(p.Registerer)
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewFromParams),
)
