// Package transport 定义连接器与连接器工厂接口
//
// 连接器是某个本地地址上的 CoAP 传输端点：
//   - 数据报载体（UDP、DTLS）
//   - 流载体（TCP、TLS、QUIC）
//
// 连接器只负责收发字节并报告对端的认证凭证，不解析身份。
package transport

import (
	"context"
	"net"
	"net/netip"

	"github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/types"
)

// ============================================================================
//                              Connector 接口
// ============================================================================

// DeliverFunc 连接器把每条入站消息交给端点
//
// 调用可能阻塞，连接器在同一会话内按顺序投递。
type DeliverFunc func(*types.Inbound)

// Connector 传输连接器
type Connector interface {
	// Protocol 返回协议名，如 "udp"、"dtls"、"tcp"、"tls"、"quic"
	Protocol() string

	// Secure 连接器是否提供认证加密
	Secure() bool

	// LocalAddr 返回本地地址
	//
	// 服务端连接器在创建时已绑定，返回实际监听地址；
	// 按需拨号的客户端连接器返回配置的本地地址。
	LocalAddr() net.Addr

	// Serve 运行入站循环，阻塞直到 ctx 取消或连接器关闭
	//
	// 正常关闭返回 nil。
	Serve(ctx context.Context, deliver DeliverFunc) error

	// Send 向对端发送一条消息
	//
	// 客户端流连接器在没有会话时先建立会话；服务端只能回复已有会话。
	Send(ctx context.Context, remote netip.AddrPort, payload []byte) error

	// Close 关闭连接器及其所有会话，可重复调用
	Close() error
}

// ============================================================================
//                              ConnectorFactory 接口
// ============================================================================

// ConnectorFactory 按地址创建连接器
//
// 创建即绑定：返回的服务端连接器已占用本地地址。
type ConnectorFactory interface {
	// CreatePlaintext 创建非安全连接器
	CreatePlaintext(addr netip.AddrPort) (Connector, error)

	// CreateSecure 创建安全连接器
	//
	// sec 为 nil 时由工厂报错。
	CreateSecure(addr netip.AddrPort, sec *security.Context) (Connector, error)
}
