// Package udp 提供 CoAP/UDP 非安全连接器
//
// 服务端与客户端共用同一实现：创建时绑定本地 UDP 地址，
// 所有对端共享一个 socket，入站消息不携带凭证。
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("core/transport/udp")

// ErrConnectorClosed 连接器已关闭
var ErrConnectorClosed = errors.New("udp: connector closed")

// Connector UDP 连接器
type Connector struct {
	conn     *net.UDPConn
	readSize int
	closed   atomic.Bool
}

// 确保实现接口
var _ transportif.Connector = (*Connector)(nil)

// Listen 绑定本地地址并创建连接器
//
// 地址被占用等错误原样返回。
func Listen(addr netip.AddrPort, readSize int) (*Connector, error) {
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(addr))
	if err != nil {
		return nil, err
	}
	if readSize <= 0 {
		readSize = 16 * 1024
	}
	logger.Debug("UDP 连接器已绑定", "addr", conn.LocalAddr())
	return &Connector{conn: conn, readSize: readSize}, nil
}

// Protocol 返回 "udp"
func (c *Connector) Protocol() string { return "udp" }

// Secure 返回 false
func (c *Connector) Secure() bool { return false }

// LocalAddr 返回实际绑定地址
func (c *Connector) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Serve 读取数据报并逐条投递，直到 ctx 取消或连接器关闭
func (c *Connector) Serve(ctx context.Context, deliver transportif.DeliverFunc) error {
	if c.closed.Load() {
		return ErrConnectorClosed
	}

	g, gctx := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			_ = c.Close()
		case <-stop:
		}
		return nil
	})

	g.Go(func() error {
		defer close(stop)
		buf := make([]byte, c.readSize)
		for {
			n, from, err := c.conn.ReadFromUDPAddrPort(buf)
			if err != nil {
				if c.closed.Load() {
					return nil
				}
				return fmt.Errorf("udp read: %w", err)
			}
			payload := make([]byte, n)
			copy(payload, buf[:n])
			peer := types.NormalizeAddrPort(from)
			deliver(types.NewInbound(peer, nil, payload, func(p []byte) error {
				_, err := c.conn.WriteToUDPAddrPort(p, from)
				return err
			}))
		}
	})

	return g.Wait()
}

// Send 向对端发送一个数据报
func (c *Connector) Send(_ context.Context, remote netip.AddrPort, payload []byte) error {
	if c.closed.Load() {
		return ErrConnectorClosed
	}
	_, err := c.conn.WriteToUDPAddrPort(payload, remote)
	return err
}

// Close 关闭 socket，可重复调用
func (c *Connector) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}
