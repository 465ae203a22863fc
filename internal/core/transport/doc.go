// Package transport 按载体组装连接器
//
// Factory 实现 pkg/interfaces/transport.ConnectorFactory：
//
//	载体   非安全端点   安全端点
//	udp    UDP          DTLS (pion/dtls)
//	tcp    TCP          TLS  (crypto/tls)
//	quic   UDP          QUIC (quic-go)
//
// 调优参数（读缓冲、会话上限、握手与空闲超时）由工厂传给每个连接器。
// 绑定失败（端口占用、权限不足）的错误原样返回给端点引导。
package transport
