// Package endpoint 定义端点向上层暴露的接口
//
// 端点对每条入站交互先解析对端身份，再把 (身份, 消息) 交给 Handler。
// 身份解析失败的交互不会到达 Handler。
package endpoint

import (
	"context"

	"github.com/artikcloud/leshan/pkg/types"
)

// Handler 处理已完成身份解析的入站交互
//
// 同一端点上可能有多个工作协程并发调用 HandleExchange。
type Handler interface {
	HandleExchange(ctx context.Context, peer types.PeerIdentity, in *types.Inbound)
}

// HandlerFunc 函数形式的 Handler
type HandlerFunc func(ctx context.Context, peer types.PeerIdentity, in *types.Inbound)

// HandleExchange 调用 f
func (f HandlerFunc) HandleExchange(ctx context.Context, peer types.PeerIdentity, in *types.Inbound) {
	f(ctx, peer, in)
}

// Discard 丢弃所有交互的 Handler
var Discard Handler = HandlerFunc(func(context.Context, types.PeerIdentity, *types.Inbound) {})
