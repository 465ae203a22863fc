package config

import (
	"fmt"
	"net/netip"

	"github.com/artikcloud/leshan/pkg/types"
)

// EndpointConfig 端点绑定配置
//
// 每个角色实例最多两个端点：
//   - 非安全端点（CoAP 明文）
//   - 安全端点（DTLS/TLS/QUIC）
//
// 两者不能同时禁用。地址留空时按载体和角色取默认值：
// 服务端绑定通配地址与协议默认端口，客户端绑定通配地址与临时端口。
type EndpointConfig struct {
	// Carrier 传输载体：udp（默认）、tcp、quic
	Carrier types.Carrier `json:"carrier,omitempty" yaml:"carrier,omitempty"`

	// PlaintextAddr 非安全端点绑定地址，如 "0.0.0.0:5683"
	PlaintextAddr string `json:"plaintext_addr,omitempty" yaml:"plaintext_addr,omitempty"`

	// SecureAddr 安全端点绑定地址，如 "0.0.0.0:5684"
	SecureAddr string `json:"secure_addr,omitempty" yaml:"secure_addr,omitempty"`

	// DisablePlaintext 禁用非安全端点
	DisablePlaintext bool `json:"disable_plaintext,omitempty" yaml:"disable_plaintext,omitempty"`

	// DisableSecure 禁用安全端点
	DisableSecure bool `json:"disable_secure,omitempty" yaml:"disable_secure,omitempty"`
}

// DefaultEndpointConfig 返回默认端点配置（UDP 载体，两个端点均启用）
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		Carrier: types.CarrierUDP,
	}
}

// Validate 验证端点配置
//
// 端点全部禁用的检查先于地址解析。
func (c EndpointConfig) Validate() error {
	if c.DisablePlaintext && c.DisableSecure {
		return ErrNoActiveEndpoint
	}
	if _, err := types.ParseCarrier(string(c.Carrier)); err != nil {
		return err
	}
	if !c.DisablePlaintext && c.PlaintextAddr != "" {
		if _, err := types.ParseBindAddr(c.PlaintextAddr); err != nil {
			return fmt.Errorf("%w: plaintext: %v", ErrInvalidBindAddress, err)
		}
	}
	if !c.DisableSecure && c.SecureAddr != "" {
		if _, err := types.ParseBindAddr(c.SecureAddr); err != nil {
			return fmt.Errorf("%w: secure: %v", ErrInvalidBindAddress, err)
		}
	}
	return nil
}

// ResolvedCarrier 返回载体，空值视为 udp
func (c EndpointConfig) ResolvedCarrier() types.Carrier {
	carrier, err := types.ParseCarrier(string(c.Carrier))
	if err != nil {
		return types.CarrierUDP
	}
	return carrier
}

// ResolvedPlaintextAddr 返回非安全端点的实际绑定地址
func (c EndpointConfig) ResolvedPlaintextAddr(role types.Role) (netip.AddrPort, error) {
	plain, _ := DefaultPorts(c.ResolvedCarrier())
	return resolveAddr(c.PlaintextAddr, role, plain)
}

// ResolvedSecureAddr 返回安全端点的实际绑定地址
func (c EndpointConfig) ResolvedSecureAddr(role types.Role) (netip.AddrPort, error) {
	_, secure := DefaultPorts(c.ResolvedCarrier())
	return resolveAddr(c.SecureAddr, role, secure)
}

func resolveAddr(s string, role types.Role, defaultPort uint16) (netip.AddrPort, error) {
	if s != "" {
		ap, err := types.ParseBindAddr(s)
		if err != nil {
			return netip.AddrPort{}, fmt.Errorf("%w: %v", ErrInvalidBindAddress, err)
		}
		return ap, nil
	}
	if role == types.RoleClient {
		return types.WildcardAddrPort(0), nil
	}
	return types.WildcardAddrPort(defaultPort), nil
}

// DefaultPorts 返回载体的默认端口（非安全，安全）
//
//	udp:  5683 / 5684 (DTLS)
//	tcp:  5683 / 5689 (TLS)
//	quic: 5683 / 5684 (QUIC)
func DefaultPorts(carrier types.Carrier) (plaintext, secure uint16) {
	switch carrier {
	case types.CarrierTCP:
		return types.DefaultCoAPPort, types.DefaultTLSPort
	default:
		return types.DefaultCoAPPort, types.DefaultCoAPSPort
	}
}

// WithCarrier 设置传输载体
func (c EndpointConfig) WithCarrier(carrier types.Carrier) EndpointConfig {
	c.Carrier = carrier
	return c
}

// WithPlaintextAddr 设置非安全端点绑定地址
func (c EndpointConfig) WithPlaintextAddr(addr string) EndpointConfig {
	c.PlaintextAddr = addr
	return c
}

// WithSecureAddr 设置安全端点绑定地址
func (c EndpointConfig) WithSecureAddr(addr string) EndpointConfig {
	c.SecureAddr = addr
	return c
}

// WithPlaintext 启用或禁用非安全端点
func (c EndpointConfig) WithPlaintext(enabled bool) EndpointConfig {
	c.DisablePlaintext = !enabled
	return c
}

// WithSecure 启用或禁用安全端点
func (c EndpointConfig) WithSecure(enabled bool) EndpointConfig {
	c.DisableSecure = !enabled
	return c
}
