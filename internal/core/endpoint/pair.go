package endpoint

import (
	"context"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	endpointif "github.com/artikcloud/leshan/pkg/interfaces/endpoint"
)

// Pair 引导结果：最多一个非安全端点和一个安全端点
//
// 两者各自可为 nil，但不会同时为 nil。
type Pair struct {
	Plaintext *Endpoint
	Secure    *Endpoint
}

// Endpoints 返回非 nil 的端点，非安全端点在前
func (p *Pair) Endpoints() []*Endpoint {
	eps := make([]*Endpoint, 0, 2)
	if p.Plaintext != nil {
		eps = append(eps, p.Plaintext)
	}
	if p.Secure != nil {
		eps = append(eps, p.Secure)
	}
	return eps
}

// Serve 在所有端点上运行入站循环，任一端点出错时停止全部
func (p *Pair) Serve(ctx context.Context, handler endpointif.Handler) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, ep := range p.Endpoints() {
		ep := ep
		g.Go(func() error {
			return ep.Serve(gctx, handler)
		})
	}
	return g.Wait()
}

// Close 关闭所有端点
func (p *Pair) Close() error {
	var err error
	for _, ep := range p.Endpoints() {
		err = multierr.Append(err, ep.Close())
	}
	return err
}
