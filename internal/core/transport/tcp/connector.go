// Package tcp 提供 CoAP/TCP 与 CoAP/TLS 连接器
//
// 每个 TCP 连接是一个会话：
//   - 服务端：创建时绑定监听地址，TLS 握手在独立协程中完成
//   - 客户端：首次 Send 时拨号，之后复用连接
//
// 流载体的分帧由上层编解码负责，连接器按读取到的字节块投递。
package tcp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/artikcloud/leshan/internal/core/security"
	"github.com/artikcloud/leshan/internal/core/transport/session"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// ErrConnectorClosed 连接器已关闭
var ErrConnectorClosed = errors.New("tcp: connector closed")

// ALPN CoAP over TLS 的 ALPN 协议名（RFC 8323）
const ALPN = "coap"

// Options 连接器参数
type Options struct {
	// ReadSize 单次读取缓冲大小
	ReadSize int

	// MaxActive 最大会话数
	MaxActive int

	// HandshakeTimeout TLS 握手与拨号超时
	HandshakeTimeout time.Duration

	// IdleTimeout 会话空闲超时
	IdleTimeout time.Duration
}

// Connector TCP/TLS 连接器
type Connector struct {
	role         types.Role
	addr         netip.AddrPort
	tlsConfig    *tls.Config
	rawPublicKey bool
	opts         Options
	table        *session.Table

	listener *net.TCPListener

	handshakes sync.WaitGroup
	hsCtx      context.Context
	hsCancel   context.CancelFunc
	dialMu     sync.Mutex
	done       chan struct{}
	closed     atomic.Bool
}

// 确保实现接口
var _ transportif.Connector = (*Connector)(nil)

// NewPlaintext 创建 CoAP/TCP 连接器
func NewPlaintext(role types.Role, addr netip.AddrPort, opts Options) (*Connector, error) {
	return newConnector(role, addr, nil, false, opts)
}

// NewTLS 创建 CoAP/TLS 连接器
//
// TLS 不支持 PSK，只有 PSK 材料的安全上下文返回 security.ErrPSKUnsupported。
func NewTLS(role types.Role, addr netip.AddrPort, sec *securityif.Context, opts Options) (*Connector, error) {
	cfg, err := security.TLSConfig(sec, role, ALPN)
	if err != nil {
		return nil, err
	}
	return newConnector(role, addr, cfg, sec.RawPublicKey, opts)
}

func newConnector(role types.Role, addr netip.AddrPort, cfg *tls.Config, rpk bool, opts Options) (*Connector, error) {
	c := &Connector{
		role:         role,
		addr:         addr,
		tlsConfig:    cfg,
		rawPublicKey: rpk,
		opts:         opts,
		table: session.NewTable(session.Options{
			ReadSize:    opts.ReadSize,
			MaxActive:   opts.MaxActive,
			IdleTimeout: opts.IdleTimeout,
		}),
		done: make(chan struct{}),
	}
	c.hsCtx, c.hsCancel = context.WithCancel(context.Background())

	if role == types.RoleServer {
		l, err := net.ListenTCP("tcp", net.TCPAddrFromAddrPort(addr))
		if err != nil {
			c.hsCancel()
			return nil, err
		}
		c.listener = l
		logger.Debug("TCP 连接器已绑定", "addr", l.Addr(), "protocol", c.Protocol())
	}
	return c, nil
}

// Protocol 返回 "tcp" 或 "tls"
func (c *Connector) Protocol() string {
	if c.tlsConfig != nil {
		return "tls"
	}
	return "tcp"
}

// Secure 是否为 TLS 连接器
func (c *Connector) Secure() bool { return c.tlsConfig != nil }

// LocalAddr 返回本地地址
func (c *Connector) LocalAddr() net.Addr {
	if c.listener != nil {
		return c.listener.Addr()
	}
	return net.TCPAddrFromAddrPort(c.addr)
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
		conn, err := c.listener.AcceptTCP()
		if err != nil {
			if c.closed.Load() {
				return nil
			}
			return fmt.Errorf("tcp accept: %w", err)
		}
		_ = conn.SetNoDelay(true)
		_ = conn.SetKeepAlive(true)

		if c.tlsConfig == nil {
			c.register(conn, nil)
			continue
		}

		c.handshakes.Add(1)
		go func() {
			defer c.handshakes.Done()
			tconn := tls.Server(conn, c.tlsConfig)
			if err := c.handshake(c.hsCtx, tconn); err != nil {
				logger.Debug("TLS 握手失败", "peer", conn.RemoteAddr(), "err", err)
				_ = conn.Close()
				return
			}
			c.register(tconn, security.CredentialFromTLS(tconn.ConnectionState(), c.rawPublicKey))
		}()
	}
}

func (c *Connector) handshake(ctx context.Context, conn *tls.Conn) error {
	if c.opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.HandshakeTimeout)
		defer cancel()
	}
	return conn.HandshakeContext(ctx)
}

func (c *Connector) register(conn net.Conn, cred types.Credential) {
	peer, err := types.AddrPortFromNet(conn.RemoteAddr())
	if err != nil {
		_ = conn.Close()
		return
	}
	if err := c.table.Add(peer, conn, cred); err != nil {
		logger.Warn("拒绝 TCP 会话", "peer", peer, "err", err)
	}
}

// Send 向对端发送一条消息
//
// 客户端在没有会话时先拨号（TLS 还要完成握手）。
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

	d := net.Dialer{Timeout: c.opts.HandshakeTimeout}
	if c.addr.Port() != 0 || !c.addr.Addr().IsUnspecified() {
		d.LocalAddr = net.TCPAddrFromAddrPort(c.addr)
	}
	conn, err := d.DialContext(ctx, "tcp", remote.String())
	if err != nil {
		return err
	}
	if c.tlsConfig == nil {
		return c.table.Add(remote, conn, nil)
	}

	tconn := tls.Client(conn, c.tlsConfig)
	if err := c.handshake(ctx, tconn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("tls handshake with %s: %w", remote, err)
	}
	return c.table.Add(remote, tconn, security.CredentialFromTLS(tconn.ConnectionState(), c.rawPublicKey))
}

// Close 关闭监听与所有会话，可重复调用
func (c *Connector) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)
	c.hsCancel()

	var err error
	if c.listener != nil {
		err = c.listener.Close()
	}
	c.handshakes.Wait()
	return multierr.Append(err, c.table.Close())
}
