package types

import (
	"errors"
	"net/netip"
)

// ErrNoReplyPath 入站消息没有回复通道
var ErrNoReplyPath = errors.New("inbound message has no reply path")

// Exchange 一次入站交互在传输层可见的部分
type Exchange interface {
	// RemoteAddr 对端地址，传输层保证始终有效
	RemoteAddr() netip.AddrPort

	// SenderCredential 发送方凭证，未认证时返回 nil
	SenderCredential() Credential
}

// Inbound 连接器投递给端点的入站消息
//
// 对流载体而言 Payload 是一次读取的原始字节，分帧由上层编解码负责。
type Inbound struct {
	peer       netip.AddrPort
	credential Credential
	payload    []byte
	reply      func([]byte) error
}

// 确保实现接口
var _ Exchange = (*Inbound)(nil)

// NewInbound 创建入站消息（payload 不复制，调用方移交所有权）
func NewInbound(peer netip.AddrPort, cred Credential, payload []byte, reply func([]byte) error) *Inbound {
	return &Inbound{
		peer:       NormalizeAddrPort(peer),
		credential: cred,
		payload:    payload,
		reply:      reply,
	}
}

// RemoteAddr 返回对端地址
func (m *Inbound) RemoteAddr() netip.AddrPort { return m.peer }

// SenderCredential 返回发送方凭证
func (m *Inbound) SenderCredential() Credential { return m.credential }

// Payload 返回消息负载
func (m *Inbound) Payload() []byte { return m.payload }

// Reply 沿原路径回复对端
func (m *Inbound) Reply(p []byte) error {
	if m.reply == nil {
		return ErrNoReplyPath
	}
	return m.reply(p)
}
