package leshan

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/artikcloud/leshan/internal/core/endpoint"
	endpointif "github.com/artikcloud/leshan/pkg/interfaces/endpoint"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("leshan")

// instance 服务端与客户端共用的生命周期
type instance struct {
	id      string
	role    types.Role
	app     *fx.App
	pair    *endpoint.Pair
	handler endpointif.Handler

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan error
}

func newInstance(role types.Role, o *options) (*instance, error) {
	inst := &instance{
		id:      uuid.NewString(),
		role:    role,
		handler: o.handler,
	}

	app, err := buildFxApp(role, o, &inst.pair)
	if err != nil {
		logger.Warn("实例构建失败", "role", role, "err", err)
		return nil, err
	}
	inst.app = app

	for _, ep := range inst.pair.Endpoints() {
		logger.Info("端点已绑定",
			"instance", inst.id,
			"role", role,
			"scheme", ep.Scheme(),
			"addr", ep.LocalAddr())
	}
	return inst, nil
}

// ID 返回实例 ID（用于日志关联）
func (i *instance) ID() string { return i.id }

// Role 返回实例角色
func (i *instance) Role() types.Role { return i.role }

// Endpoints 返回已绑定的端点
func (i *instance) Endpoints() *endpoint.Pair { return i.pair }

// Start 启动实例，开始处理入站交互
//
// 端点在构建时已绑定，Start 只启动入站循环。
func (i *instance) Start(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrClosed
	}
	if i.started {
		return ErrAlreadyStarted
	}

	if err := i.app.Start(ctx); err != nil {
		return err
	}

	serveCtx, cancel := context.WithCancel(context.Background())
	i.cancel = cancel
	i.done = make(chan error, 1)
	i.started = true

	go func() {
		err := i.pair.Serve(serveCtx, i.handler)
		if err != nil {
			logger.Error("入站循环异常退出", "instance", i.id, "err", err)
		}
		i.done <- err
	}()

	logger.Info("实例已启动", "instance", i.id, "role", i.role)
	return nil
}

// Close 关闭实例及其端点，可重复调用
func (i *instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true

	var err error
	if i.started {
		i.cancel()
		err = multierr.Append(err, i.app.Stop(context.Background()))
		// 入站循环异常退出的错误已记录，这里只等待退出
		<-i.done
	} else {
		err = multierr.Append(err, i.pair.Close())
	}

	logger.Info("实例已关闭", "instance", i.id, "role", i.role)
	return err
}
