package endpoint

import (
	"context"
	"net"
	"net/netip"
	"sync"

	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/types"
)

// fakeConnector 内存连接器，入站消息由测试通过 inject 注入
type fakeConnector struct {
	addr   netip.AddrPort
	secure bool

	inbound chan *types.Inbound
	done    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	closed int
	sent   [][]byte
}

func newFakeConnector(addr netip.AddrPort, secure bool) *fakeConnector {
	return &fakeConnector{
		addr:    addr,
		secure:  secure,
		inbound: make(chan *types.Inbound),
		done:    make(chan struct{}),
	}
}

func (c *fakeConnector) Protocol() string {
	if c.secure {
		return "dtls"
	}
	return "udp"
}

func (c *fakeConnector) Secure() bool { return c.secure }

func (c *fakeConnector) LocalAddr() net.Addr { return net.UDPAddrFromAddrPort(c.addr) }

func (c *fakeConnector) Serve(ctx context.Context, deliver transportif.DeliverFunc) error {
	for {
		select {
		case in := <-c.inbound:
			deliver(in)
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		}
	}
}

func (c *fakeConnector) Send(_ context.Context, _ netip.AddrPort, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeConnector) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConnector) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeFactory 记录调用的连接器工厂
type fakeFactory struct {
	plainErr  error
	secureErr error

	plainAddrs  []netip.AddrPort
	secureAddrs []netip.AddrPort
	secureCtx   *securityif.Context

	plain  *fakeConnector
	secure *fakeConnector
}

var _ transportif.ConnectorFactory = (*fakeFactory)(nil)

func (f *fakeFactory) CreatePlaintext(addr netip.AddrPort) (transportif.Connector, error) {
	f.plainAddrs = append(f.plainAddrs, addr)
	if f.plainErr != nil {
		return nil, f.plainErr
	}
	f.plain = newFakeConnector(addr, false)
	return f.plain, nil
}

func (f *fakeFactory) CreateSecure(addr netip.AddrPort, sec *securityif.Context) (transportif.Connector, error) {
	f.secureAddrs = append(f.secureAddrs, addr)
	f.secureCtx = sec
	if f.secureErr != nil {
		return nil, f.secureErr
	}
	f.secure = newFakeConnector(addr, true)
	return f.secure, nil
}

func (f *fakeFactory) calls() int {
	return len(f.plainAddrs) + len(f.secureAddrs)
}
