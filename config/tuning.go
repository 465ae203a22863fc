package config

import (
	"fmt"
	"time"

	"github.com/artikcloud/leshan/pkg/types"
)

// TuningConfig 传输调优参数
//
// 引导逻辑不解释这些值，只把它们原样交给连接器与端点。
// 调用方设置的值优先，ApplyDefaults 只填充零值。
type TuningConfig struct {
	// MaxMessageSize 单条消息最大字节数（读缓冲大小）
	MaxMessageSize int `json:"max_message_size,omitempty" yaml:"max_message_size,omitempty"`

	// ProtocolStageThreads 每个端点处理入站交互的工作协程数
	ProtocolStageThreads int `json:"protocol_stage_threads,omitempty" yaml:"protocol_stage_threads,omitempty"`

	// ExchangeLifetime 单次交互处理的最长时间
	ExchangeLifetime Duration `json:"exchange_lifetime,omitempty" yaml:"exchange_lifetime,omitempty"`

	// MaxActivePeers 流连接器同时保持的最大会话数
	MaxActivePeers int `json:"max_active_peers,omitempty" yaml:"max_active_peers,omitempty"`

	// HandshakeTimeout 安全握手超时
	HandshakeTimeout Duration `json:"handshake_timeout,omitempty" yaml:"handshake_timeout,omitempty"`

	// IdleTimeout 会话空闲超时，0 表示不超时
	IdleTimeout Duration `json:"idle_timeout,omitempty" yaml:"idle_timeout,omitempty"`

	// InboundRateLimit 每个端点每秒接受的入站交互数，0 表示不限
	InboundRateLimit float64 `json:"inbound_rate_limit,omitempty" yaml:"inbound_rate_limit,omitempty"`

	// InboundBurst 入站限流桶容量
	InboundBurst int `json:"inbound_burst,omitempty" yaml:"inbound_burst,omitempty"`
}

// DefaultTuningConfig 返回角色的默认调优参数
func DefaultTuningConfig(role types.Role) TuningConfig {
	cfg := TuningConfig{
		MaxMessageSize:       16 * 1024,
		ProtocolStageThreads: 2,
		ExchangeLifetime:     Duration(10 * time.Second),
		MaxActivePeers:       150000,
		HandshakeTimeout:     Duration(30 * time.Second),
	}
	if role == types.RoleClient {
		cfg.MaxActivePeers = 10
	}
	return cfg
}

// ApplyDefaults 用角色默认值填充未设置的字段
func (c TuningConfig) ApplyDefaults(role types.Role) TuningConfig {
	def := DefaultTuningConfig(role)
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.ProtocolStageThreads == 0 {
		c.ProtocolStageThreads = def.ProtocolStageThreads
	}
	if c.ExchangeLifetime == 0 {
		c.ExchangeLifetime = def.ExchangeLifetime
	}
	if c.MaxActivePeers == 0 {
		c.MaxActivePeers = def.MaxActivePeers
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.InboundRateLimit > 0 && c.InboundBurst == 0 {
		c.InboundBurst = int(c.InboundRateLimit)
		if c.InboundBurst < 1 {
			c.InboundBurst = 1
		}
	}
	return c
}

// Validate 验证调优参数
func (c TuningConfig) Validate() error {
	switch {
	case c.MaxMessageSize < 0:
		return fmt.Errorf("%w: max_message_size must not be negative", ErrInvalidTuning)
	case c.ProtocolStageThreads < 0:
		return fmt.Errorf("%w: protocol_stage_threads must not be negative", ErrInvalidTuning)
	case c.ExchangeLifetime < 0:
		return fmt.Errorf("%w: exchange_lifetime must not be negative", ErrInvalidTuning)
	case c.MaxActivePeers < 0:
		return fmt.Errorf("%w: max_active_peers must not be negative", ErrInvalidTuning)
	case c.HandshakeTimeout < 0:
		return fmt.Errorf("%w: handshake_timeout must not be negative", ErrInvalidTuning)
	case c.IdleTimeout < 0:
		return fmt.Errorf("%w: idle_timeout must not be negative", ErrInvalidTuning)
	case c.InboundRateLimit < 0:
		return fmt.Errorf("%w: inbound_rate_limit must not be negative", ErrInvalidTuning)
	case c.InboundBurst < 0:
		return fmt.Errorf("%w: inbound_burst must not be negative", ErrInvalidTuning)
	}
	return nil
}

// WithMaxMessageSize 设置最大消息大小
func (c TuningConfig) WithMaxMessageSize(n int) TuningConfig {
	c.MaxMessageSize = n
	return c
}

// WithProtocolStageThreads 设置工作协程数
func (c TuningConfig) WithProtocolStageThreads(n int) TuningConfig {
	c.ProtocolStageThreads = n
	return c
}

// WithExchangeLifetime 设置交互生命周期
func (c TuningConfig) WithExchangeLifetime(d time.Duration) TuningConfig {
	c.ExchangeLifetime = Duration(d)
	return c
}

// WithInboundRateLimit 设置入站限流
func (c TuningConfig) WithInboundRateLimit(perSecond float64, burst int) TuningConfig {
	c.InboundRateLimit = perSecond
	c.InboundBurst = burst
	return c
}
