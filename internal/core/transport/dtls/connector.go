// Package dtls 提供 CoAP/DTLS 安全连接器
//
// 基于 pion/dtls，支持 PSK、RPK、X.509 三种认证方式：
//   - 服务端：创建时绑定 UDP 地址，Accept 完成握手后登记会话
//   - 客户端：首次 Send 时向对端拨号握手，之后复用会话
//
// 会话凭证由 security.CredentialFromDTLS 从握手状态中提取。
package dtls

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/dtls/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/artikcloud/leshan/internal/core/security"
	"github.com/artikcloud/leshan/internal/core/transport/session"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("core/transport/dtls")

// ErrConnectorClosed 连接器已关闭
var ErrConnectorClosed = errors.New("dtls: connector closed")

// Options 连接器参数
type Options struct {
	// ReadSize 单次读取缓冲大小
	ReadSize int

	// MaxActive 最大会话数
	MaxActive int

	// HandshakeTimeout 握手超时
	HandshakeTimeout time.Duration

	// IdleTimeout 会话空闲超时
	IdleTimeout time.Duration
}

// Connector DTLS 连接器
type Connector struct {
	role  types.Role
	addr  netip.AddrPort
	sec   *securityif.Context
	cfg   *dtls.Config
	opts  Options
	table *session.Table

	listener net.Listener

	dialMu sync.Mutex
	done   chan struct{}
	closed atomic.Bool
}

// 确保实现接口
var _ transportif.Connector = (*Connector)(nil)

// New 创建 DTLS 连接器
//
// 服务端立即绑定 addr；客户端只记录 addr，在拨号时作为本地地址。
func New(role types.Role, addr netip.AddrPort, sec *securityif.Context, opts Options) (*Connector, error) {
	cfg, err := security.DTLSConfig(sec, role)
	if err != nil {
		return nil, err
	}
	if opts.HandshakeTimeout > 0 {
		timeout := opts.HandshakeTimeout
		cfg.ConnectContextMaker = func() (context.Context, func()) {
			return context.WithTimeout(context.Background(), timeout)
		}
	}

	c := &Connector{
		role: role,
		addr: addr,
		sec:  sec,
		cfg:  cfg,
		opts: opts,
		table: session.NewTable(session.Options{
			ReadSize:    opts.ReadSize,
			MaxActive:   opts.MaxActive,
			IdleTimeout: opts.IdleTimeout,
		}),
		done: make(chan struct{}),
	}

	if role == types.RoleServer {
		l, err := dtls.Listen("udp", net.UDPAddrFromAddrPort(addr), cfg)
		if err != nil {
			return nil, err
		}
		c.listener = l
		logger.Debug("DTLS 连接器已绑定", "addr", l.Addr(), "mode", sec.Mode())
	}
	return c, nil
}

// Protocol 返回 "dtls"
func (c *Connector) Protocol() string { return "dtls" }

// Secure 返回 true
func (c *Connector) Secure() bool { return true }

// LocalAddr 返回本地地址
func (c *Connector) LocalAddr() net.Addr {
	if c.listener != nil {
		return c.listener.Addr()
	}
	return net.UDPAddrFromAddrPort(c.addr)
}

// Serve 运行入站循环
func (c *Connector) Serve(ctx context.Context, deliver transportif.DeliverFunc) error {
	if c.closed.Load() {
		return ErrConnectorClosed
	}
	c.table.SetDeliver(deliver)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			_ = c.Close()
		case <-c.done:
		}
		return nil
	})
	if c.listener != nil {
		g.Go(c.acceptLoop)
	}
	return g.Wait()
}

func (c *Connector) acceptLoop() error {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if c.closed.Load() {
				return nil
			}
			// 单个对端握手失败不影响监听
			logger.Debug("DTLS 握手失败", "err", err)
			continue
		}
		c.register(conn)
	}
}

func (c *Connector) register(conn net.Conn) {
	dconn, ok := conn.(*dtls.Conn)
	if !ok {
		_ = conn.Close()
		return
	}
	peer, err := types.AddrPortFromNet(dconn.RemoteAddr())
	if err != nil {
		_ = dconn.Close()
		return
	}
	cred, err := security.CredentialFromDTLS(dconn.ConnectionState(), c.sec, c.role)
	if err != nil {
		logger.Warn("提取对端凭证失败", "peer", peer, "err", err)
		_ = dconn.Close()
		return
	}
	if err := c.table.Add(peer, dconn, cred); err != nil {
		logger.Warn("拒绝 DTLS 会话", "peer", peer, "err", err)
	}
}

// Send 向对端发送一条消息
//
// 客户端在没有会话时先完成握手。
func (c *Connector) Send(ctx context.Context, remote netip.AddrPort, payload []byte) error {
	if c.closed.Load() {
		return ErrConnectorClosed
	}
	if c.role == types.RoleClient && !c.table.Has(remote) {
		if err := c.dial(ctx, remote); err != nil {
			return err
		}
	}
	return c.table.Send(remote, payload)
}

func (c *Connector) dial(ctx context.Context, remote netip.AddrPort) error {
	c.dialMu.Lock()
	defer c.dialMu.Unlock()
	if c.table.Has(remote) {
		return nil
	}

	udpConn, err := net.DialUDP("udp", net.UDPAddrFromAddrPort(c.addr), net.UDPAddrFromAddrPort(remote))
	if err != nil {
		return err
	}
	if c.opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.HandshakeTimeout)
		defer cancel()
	}
	dconn, err := dtls.ClientWithContext(ctx, udpConn, c.cfg)
	if err != nil {
		_ = udpConn.Close()
		return fmt.Errorf("dtls handshake with %s: %w", remote, err)
	}
	cred, err := security.CredentialFromDTLS(dconn.ConnectionState(), c.sec, c.role)
	if err != nil {
		_ = dconn.Close()
		return err
	}
	return c.table.Add(remote, dconn, cred)
}

// Close 关闭监听与所有会话，可重复调用
func (c *Connector) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	var err error
	if c.listener != nil {
		err = c.listener.Close()
	}
	return multierr.Append(err, c.table.Close())
}
