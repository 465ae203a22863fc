package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              Role 角色
// ============================================================================

// Role 端点所属角色
type Role int

const (
	// RoleServer LwM2M 服务端
	RoleServer Role = iota
	// RoleClient LwM2M 客户端
	RoleClient
)

// String 返回角色名
func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Carrier 传输载体
// ============================================================================

// Carrier 底层传输载体
//
// 决定非安全端点与安全端点使用的连接器组合：
//   - udp:  CoAP/UDP + CoAP/DTLS
//   - tcp:  CoAP/TCP + CoAP/TLS
//   - quic: CoAP/UDP + CoAP/QUIC
type Carrier string

const (
	// CarrierUDP 数据报载体（默认）
	CarrierUDP Carrier = "udp"
	// CarrierTCP 流载体
	CarrierTCP Carrier = "tcp"
	// CarrierQUIC QUIC 加密流载体
	CarrierQUIC Carrier = "quic"
)

// ParseCarrier 解析载体名称（大小写不敏感，空字符串视为 udp）
func ParseCarrier(s string) (Carrier, error) {
	switch c := Carrier(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CarrierUDP, nil
	case CarrierUDP, CarrierTCP, CarrierQUIC:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCarrier, s)
	}
}

// ============================================================================
//                              SecurityMode 安全模式
// ============================================================================

// SecurityMode LwM2M Security 对象中的安全模式（资源 /0/x/2）
type SecurityMode int

const (
	// SecurityModePSK 预共享密钥
	SecurityModePSK SecurityMode = 0
	// SecurityModeRPK 原始公钥
	SecurityModeRPK SecurityMode = 1
	// SecurityModeX509 证书
	SecurityModeX509 SecurityMode = 2
	// SecurityModeNoSec 无安全
	SecurityModeNoSec SecurityMode = 3
)

// String 返回安全模式名
func (m SecurityMode) String() string {
	switch m {
	case SecurityModePSK:
		return "psk"
	case SecurityModeRPK:
		return "rpk"
	case SecurityModeX509:
		return "x509"
	case SecurityModeNoSec:
		return "nosec"
	default:
		return fmt.Sprintf("SecurityMode(%d)", int(m))
	}
}

// ParseSecurityMode 解析安全模式名称
func ParseSecurityMode(s string) (SecurityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "psk":
		return SecurityModePSK, nil
	case "rpk":
		return SecurityModeRPK, nil
	case "x509":
		return SecurityModeX509, nil
	case "", "nosec", "none":
		return SecurityModeNoSec, nil
	default:
		return SecurityModeNoSec, fmt.Errorf("unknown security mode %q", s)
	}
}

// ============================================================================
//                              AuthKind 认证变体
// ============================================================================

// AuthKind PeerIdentity 的认证变体标签
type AuthKind int

const (
	// AuthUnsecured 未认证
	AuthUnsecured AuthKind = iota
	// AuthPSK 预共享密钥认证
	AuthPSK
	// AuthRPK 原始公钥认证
	AuthRPK
	// AuthX509 证书认证
	AuthX509
)

// String 返回变体名
func (k AuthKind) String() string {
	switch k {
	case AuthUnsecured:
		return "unsecure"
	case AuthPSK:
		return "psk"
	case AuthRPK:
		return "rpk"
	case AuthX509:
		return "x509"
	default:
		return "unknown"
	}
}
