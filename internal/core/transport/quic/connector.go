// Package quic 提供 CoAP over QUIC 安全连接器
//
// 每个 QUIC 连接只使用第一条双向流作为会话，后续流被拒绝。
// 认证走 TLS 1.3，支持 RPK 与 X.509，不支持 PSK。
package quic

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

	"github.com/quic-go/quic-go"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/artikcloud/leshan/internal/core/security"
	"github.com/artikcloud/leshan/internal/core/transport/session"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("core/transport/quic")

// ErrConnectorClosed 连接器已关闭
var ErrConnectorClosed = errors.New("quic: connector closed")

// ALPN CoAP over QUIC 的 ALPN 协议名
const ALPN = "coap"

// 应用层关闭码
const (
	codeNormal      quic.ApplicationErrorCode = 0
	codeExtraStream quic.StreamErrorCode      = 1
)

// Options 连接器参数
type Options struct {
	// ReadSize 单次读取缓冲大小
	ReadSize int

	// MaxActive 最大会话数
	MaxActive int

	// HandshakeTimeout 握手超时
	HandshakeTimeout time.Duration

	// IdleTimeout 连接空闲超时
	IdleTimeout time.Duration
}

// Connector QUIC 连接器
type Connector struct {
	role         types.Role
	addr         netip.AddrPort
	sec          *securityif.Context
	rawPublicKey bool
	opts         Options
	table        *session.Table

	mu        sync.Mutex
	udpConn   *net.UDPConn
	transport *quic.Transport
	listener  *quic.Listener

	tlsConf  *tls.Config
	quicConf *quic.Config

	conns  sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	dialMu sync.Mutex
	closed atomic.Bool
}

// 确保实现接口
var _ transportif.Connector = (*Connector)(nil)

// New 创建 QUIC 连接器
//
// 服务端立即绑定 UDP 地址并开始监听；客户端在首次拨号时绑定。
func New(role types.Role, addr netip.AddrPort, sec *securityif.Context, opts Options) (*Connector, error) {
	tlsConf, err := tlsConfig(sec, role)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		role:         role,
		addr:         addr,
		sec:          sec,
		rawPublicKey: sec.RawPublicKey,
		opts:         opts,
		table: session.NewTable(session.Options{
			ReadSize:  opts.ReadSize,
			MaxActive: opts.MaxActive,
		}),
		tlsConf: tlsConf,
		quicConf: &quic.Config{
			HandshakeIdleTimeout: opts.HandshakeTimeout,
			MaxIdleTimeout:       opts.IdleTimeout,
			KeepAlivePeriod:      keepAlive(opts.IdleTimeout),
		},
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	if role == types.RoleServer {
		if err := c.bind(); err != nil {
			c.cancel()
			return nil, err
		}
		l, err := c.transport.Listen(c.tlsConf, c.quicConf)
		if err != nil {
			_ = c.closeSocket()
			c.cancel()
			return nil, fmt.Errorf("quic listen: %w", err)
		}
		c.listener = l
		logger.Debug("QUIC 连接器已绑定", "addr", c.udpConn.LocalAddr(), "mode", sec.Mode())
	}
	return c, nil
}

// keepAlive 空闲超时的一半，未设置空闲超时时不发送
func keepAlive(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	return idle / 2
}

func (c *Connector) bind() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport != nil {
		return nil
	}
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(c.addr))
	if err != nil {
		return err
	}
	c.udpConn = conn
	c.transport = &quic.Transport{Conn: conn}
	return nil
}

func (c *Connector) closeSocket() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport == nil {
		return nil
	}
	err := multierr.Append(c.transport.Close(), ignoreClosed(c.udpConn.Close()))
	c.transport = nil
	c.udpConn = nil
	return err
}

// Protocol 返回 "quic"
func (c *Connector) Protocol() string { return "quic" }

// Secure 返回 true
func (c *Connector) Secure() bool { return true }

// LocalAddr 返回本地地址
func (c *Connector) LocalAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.udpConn != nil {
		return c.udpConn.LocalAddr()
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
		case <-c.ctx.Done():
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
		conn, err := c.listener.Accept(c.ctx)
		if err != nil {
			if c.closed.Load() {
				return nil
			}
			return fmt.Errorf("quic accept: %w", err)
		}
		c.conns.Add(1)
		go func() {
			defer c.conns.Done()
			c.serveConn(conn)
		}()
	}
}

// serveConn 把连接的第一条流登记为会话，拒绝后续流
func (c *Connector) serveConn(conn quic.Connection) {
	stream, err := conn.AcceptStream(c.ctx)
	if err != nil {
		_ = conn.CloseWithError(codeNormal, "")
		return
	}
	if err := c.register(conn, stream); err != nil {
		return
	}
	for {
		extra, err := conn.AcceptStream(c.ctx)
		if err != nil {
			return
		}
		extra.CancelRead(codeExtraStream)
		extra.CancelWrite(codeExtraStream)
	}
}

func (c *Connector) register(conn quic.Connection, stream quic.Stream) error {
	peer, err := types.AddrPortFromNet(conn.RemoteAddr())
	if err != nil {
		_ = conn.CloseWithError(codeNormal, "")
		return err
	}
	cred := security.CredentialFromTLS(conn.ConnectionState().TLS, c.rawPublicKey)
	if err := c.table.Add(peer, &streamConn{Stream: stream, conn: conn}, cred); err != nil {
		logger.Warn("拒绝 QUIC 会话", "peer", peer, "err", err)
		return err
	}
	return nil
}

// Send 向对端发送一条消息
//
// 客户端在没有会话时先拨号并打开流。
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
	if err := c.bind(); err != nil {
		return err
	}

	c.mu.Lock()
	tr := c.transport
	c.mu.Unlock()
	if tr == nil {
		return ErrConnectorClosed
	}

	conn, err := tr.Dial(ctx, net.UDPAddrFromAddrPort(remote), c.tlsConf, c.quicConf)
	if err != nil {
		return fmt.Errorf("quic dial %s: %w", remote, err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(codeNormal, "")
		return fmt.Errorf("quic open stream: %w", err)
	}
	return c.register(conn, stream)
}

// Close 关闭监听、所有会话与 UDP socket，可重复调用
func (c *Connector) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.cancel()

	var err error
	if c.listener != nil {
		err = ignoreClosed(c.listener.Close())
	}
	c.conns.Wait()
	err = multierr.Append(err, c.table.Close())
	return multierr.Append(err, c.closeSocket())
}

// streamConn 把 QUIC 流适配为会话连接，关闭时一并关闭所属连接
type streamConn struct {
	quic.Stream
	conn quic.Connection
}

func (s *streamConn) Close() error {
	s.Stream.CancelRead(codeExtraStream)
	err := s.Stream.Close()
	_ = s.conn.CloseWithError(codeNormal, "")
	return err
}

func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, net.ErrClosed) || errors.Is(err, quic.ErrServerClosed) {
		return nil
	}
	return err
}
