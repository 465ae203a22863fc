package endpoint

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/artikcloud/leshan/config"
	"github.com/artikcloud/leshan/internal/core/identity"
	"github.com/artikcloud/leshan/internal/core/metrics"
	endpointif "github.com/artikcloud/leshan/pkg/interfaces/endpoint"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("core/endpoint")

// ============================================================================
//                              Endpoint 结构
// ============================================================================

// Endpoint 已绑定的端点
//
// 包装一个连接器，为每条入站交互解析对端身份。
type Endpoint struct {
	conn     transportif.Connector
	scheme   string
	resolver *identity.Resolver
	metrics  *metrics.Metrics
	limiter  *rate.Limiter

	workers  int
	lifetime time.Duration

	serving   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Options 端点参数
type Options struct {
	// Tuning 调优参数，零值字段取服务端默认值
	Tuning config.TuningConfig

	// Resolver 身份解析器，nil 时使用默认解析器
	Resolver *identity.Resolver

	// Metrics 指标，可为 nil
	Metrics *metrics.Metrics
}

// New 用已绑定的连接器创建端点
func New(conn transportif.Connector, scheme string, opts Options) *Endpoint {
	tuning := opts.Tuning.ApplyDefaults(types.RoleServer)

	resolver := opts.Resolver
	if resolver == nil {
		resolver = identity.NewResolver()
	}

	workers := tuning.ProtocolStageThreads
	if workers < 1 {
		workers = 1
	}

	ep := &Endpoint{
		conn:     conn,
		scheme:   scheme,
		resolver: resolver,
		metrics:  opts.Metrics,
		workers:  workers,
		lifetime: tuning.ExchangeLifetime.Duration(),
	}
	if tuning.InboundRateLimit > 0 {
		ep.limiter = rate.NewLimiter(rate.Limit(tuning.InboundRateLimit), tuning.InboundBurst)
	}

	ep.metrics.EndpointBound(scheme)
	return ep
}

// Scheme 返回 URI 方案，如 "coap"、"coaps+tcp"
func (e *Endpoint) Scheme() string { return e.scheme }

// IsSecure 是否为安全端点
func (e *Endpoint) IsSecure() bool { return e.conn.Secure() }

// Protocol 返回连接器协议名
func (e *Endpoint) Protocol() string { return e.conn.Protocol() }

// LocalAddr 返回绑定地址
func (e *Endpoint) LocalAddr() net.Addr { return e.conn.LocalAddr() }

// Connector 返回底层连接器
func (e *Endpoint) Connector() transportif.Connector { return e.conn }

// Send 向对端发送一条消息
func (e *Endpoint) Send(ctx context.Context, remote netip.AddrPort, payload []byte) error {
	if e.closed.Load() {
		return ErrEndpointClosed
	}
	return e.conn.Send(ctx, remote, payload)
}

// ============================================================================
//                              入站服务
// ============================================================================

// Serve 运行入站循环，阻塞直到 ctx 取消或端点关闭
//
// handler 为 nil 时丢弃所有交互。同一端点只能 Serve 一次。
func (e *Endpoint) Serve(ctx context.Context, handler endpointif.Handler) error {
	if e.closed.Load() {
		return ErrEndpointClosed
	}
	if !e.serving.CompareAndSwap(false, true) {
		return ErrAlreadyServing
	}
	if handler == nil {
		handler = endpointif.Discard
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan *types.Inbound, e.workers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return e.conn.Serve(gctx, func(in *types.Inbound) {
			e.metrics.Inbound(e.scheme, len(in.Payload()))
			if e.limiter != nil && !e.limiter.Allow() {
				e.metrics.Dropped(e.scheme, metrics.DropRateLimited)
				logger.Debug("入站交互超过限流，丢弃", "scheme", e.scheme, "peer", in.RemoteAddr())
				return
			}
			select {
			case queue <- in:
			case <-gctx.Done():
				e.metrics.Dropped(e.scheme, metrics.DropCanceled)
			}
		})
	})

	for i := 0; i < e.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case in := <-queue:
					e.handle(gctx, handler, in)
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	logger.Info("端点开始服务", "scheme", e.scheme, "addr", e.conn.LocalAddr(), "workers", e.workers)
	err := g.Wait()
	if e.closed.Load() {
		return nil
	}
	return err
}

// handle 解析身份并调用 handler
func (e *Endpoint) handle(ctx context.Context, handler endpointif.Handler, in *types.Inbound) {
	peer, err := e.resolver.Resolve(in)
	if err != nil {
		e.metrics.ObserveFailure(e.scheme, identity.Reason(err))
		logger.Warn("对端身份解析失败，丢弃交互",
			"scheme", e.scheme,
			"peer", in.RemoteAddr(),
			"credential", credentialType(in.SenderCredential()),
			"err", err)
		return
	}
	e.metrics.ObserveIdentity(e.scheme, peer)

	if e.lifetime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.lifetime)
		defer cancel()
	}
	handler.HandleExchange(ctx, peer, in)
}

func credentialType(c types.Credential) string {
	if c == nil {
		return "none"
	}
	return string(c.CredentialType())
}

// ============================================================================
//                              生命周期
// ============================================================================

// Close 关闭端点及其连接器，可重复调用
func (e *Endpoint) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.closeErr = e.conn.Close()
		e.metrics.EndpointClosed(e.scheme)
		logger.Debug("端点已关闭", "scheme", e.scheme, "addr", e.conn.LocalAddr())
	})
	return e.closeErr
}
