// Package security 把安全上下文转换为具体的握手配置
//
// 安全上下文（pkg/interfaces/security.Context）对端点引导是不透明的，
// 本包负责为各载体解释它：
//   - DTLSConfig: pion/dtls 配置，支持 PSK、RPK、X.509
//   - TLSConfig:  crypto/tls 配置（TLS 与 QUIC），支持 RPK、X.509，不支持 PSK
//
// 握手完成后，CredentialFromDTLS / CredentialFromTLS 把连接状态转换为
// 身份解析器消费的 types.Credential。
package security
