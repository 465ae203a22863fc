// Package types 定义 leshan 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              身份相关错误
// ============================================================================

var (
	// ErrInvalidPeerAddress 对端地址无效或缺失
	ErrInvalidPeerAddress = errors.New("invalid peer address")

	// ErrEmptyPSKIdentity PSK 标识为空
	ErrEmptyPSKIdentity = errors.New("empty PSK identity")

	// ErrEmptyPublicKey RPK 公钥为空
	ErrEmptyPublicKey = errors.New("empty raw public key")

	// ErrEmptyCommonName X.509 Common Name 为空
	ErrEmptyCommonName = errors.New("empty x509 common name")

	// ErrNotRawPublicKey 身份不是 RPK 变体
	ErrNotRawPublicKey = errors.New("identity is not a raw public key identity")
)

// ============================================================================
//                              对象相关错误
// ============================================================================

var (
	// ErrEmptyEndpointName 客户端端点名为空
	ErrEmptyEndpointName = errors.New("empty endpoint name")

	// ErrUnknownCarrier 未知的传输载体
	ErrUnknownCarrier = errors.New("unknown carrier")
)
