// Package security 定义安全端点使用的安全上下文
//
// 安全上下文是端点引导阶段的不透明输入：引导逻辑只判断它是否存在，
// 具体内容由连接器工厂解释（DTLS、TLS、QUIC 各自构建握手配置）。
package security

import (
	"crypto/tls"
	"crypto/x509"
)

// ============================================================================
//                              PSKStore 接口
// ============================================================================

// PSKStore 服务端按 PSK 标识查找密钥
//
// 未知标识返回错误，握手随之失败。
type PSKStore interface {
	Key(identity string) ([]byte, error)
}

// ============================================================================
//                              Context 安全上下文
// ============================================================================

// Context 安全端点的密钥材料
//
// 同一个 Context 可以同时携带 PSK 与证书材料；
// DTLS 连接器一次只能使用其中一种，PSK 优先。
type Context struct {
	// PSKIdentity 客户端 PSK 标识
	PSKIdentity string

	// PSKKey 客户端 PSK 密钥
	PSKKey []byte

	// PSKStore 服务端 PSK 存储
	PSKStore PSKStore

	// Certificate 本端证书与私钥（RPK 与 X.509 共用）
	Certificate *tls.Certificate

	// TrustedCertificates 信任的 CA 证书（X.509 校验）
	TrustedCertificates []*x509.Certificate

	// TrustedPublicKeys 固定的对端公钥（PKIX DER）
	//
	// RPK 客户端必须至少配置一个；RPK 服务端为空时接受任意公钥，
	// 授权交给上层。
	TrustedPublicKeys [][]byte

	// RawPublicKey 证书仅作为公钥载体，对端身份解析为 RPK
	RawPublicKey bool

	// ServerName 客户端握手时使用的服务器名
	ServerName string
}

// HasPSK 是否携带 PSK 材料（客户端标识+密钥，或服务端存储）
func (c *Context) HasPSK() bool {
	if c == nil {
		return false
	}
	return c.PSKStore != nil || (c.PSKIdentity != "" && len(c.PSKKey) > 0)
}

// HasCertificate 是否携带本端证书
func (c *Context) HasCertificate() bool {
	return c != nil && c.Certificate != nil
}

// Mode 返回上下文对应的认证方式名称
func (c *Context) Mode() string {
	switch {
	case c == nil:
		return "none"
	case c.HasPSK():
		return "psk"
	case c.HasCertificate() && c.RawPublicKey:
		return "rpk"
	case c.HasCertificate():
		return "x509"
	default:
		return "none"
	}
}
