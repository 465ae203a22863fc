package security

import "errors"

var (
	// ErrNoSecurityContext 安全端点缺少安全上下文
	ErrNoSecurityContext = errors.New("security: no security context for secure endpoint")

	// ErrPSKUnsupported 载体不支持 PSK（TLS、QUIC）
	ErrPSKUnsupported = errors.New("security: pre-shared keys are not supported on this carrier")

	// ErrPSKAndCertificate DTLS 不能同时使用 PSK 与证书
	ErrPSKAndCertificate = errors.New("security: dtls cannot use psk and certificate at the same time")

	// ErrNoPSKIdentity 客户端缺少 PSK 标识或密钥
	ErrNoPSKIdentity = errors.New("security: psk identity and key required")

	// ErrUnknownPSKIdentity PSK 存储中没有该标识
	ErrUnknownPSKIdentity = errors.New("security: unknown psk identity")

	// ErrNoCertificate 缺少本端证书
	ErrNoCertificate = errors.New("security: no certificate provided")

	// ErrNoTrustAnchors X.509 模式缺少信任的 CA 证书
	ErrNoTrustAnchors = errors.New("security: x509 mode requires trusted certificates")

	// ErrNoTrustedKeys RPK 客户端缺少固定的服务端公钥
	ErrNoTrustedKeys = errors.New("security: rpk client requires trusted public keys")

	// ErrNoPeerCertificate 对端未提供证书
	ErrNoPeerCertificate = errors.New("security: peer sent no certificate")

	// ErrUntrustedPublicKey 对端公钥不在信任列表中
	ErrUntrustedPublicKey = errors.New("security: untrusted peer public key")
)
