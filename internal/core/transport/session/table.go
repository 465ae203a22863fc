package session

import (
	"errors"
	"io"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("core/transport/session")

// Conn 会话底层连接
//
// net.Conn 与 quic.Stream 都满足该接口。
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Options 会话表参数
type Options struct {
	// ReadSize 单次读取缓冲大小
	ReadSize int

	// MaxActive 最大会话数，0 表示不限
	MaxActive int

	// IdleTimeout 会话空闲超时，0 表示不超时
	IdleTimeout time.Duration
}

type entry struct {
	conn Conn
	cred types.Credential
	wmu  sync.Mutex
}

func (e *entry) write(p []byte) error {
	e.wmu.Lock()
	defer e.wmu.Unlock()
	_, err := e.conn.Write(p)
	return err
}

// Table 会话表，并发安全
type Table struct {
	opts Options

	mu       sync.Mutex
	sessions map[netip.AddrPort]*entry
	closed   bool

	deliver atomic.Pointer[transportif.DeliverFunc]
	wg      sync.WaitGroup
}

// NewTable 创建会话表
func NewTable(opts Options) *Table {
	if opts.ReadSize <= 0 {
		opts.ReadSize = 16 * 1024
	}
	return &Table{
		opts:     opts,
		sessions: make(map[netip.AddrPort]*entry),
	}
}

// SetDeliver 设置入站投递函数，nil 表示丢弃入站消息
func (t *Table) SetDeliver(fn transportif.DeliverFunc) {
	if fn == nil {
		t.deliver.Store(nil)
		return
	}
	t.deliver.Store(&fn)
}

// Add 登记一个已完成握手的会话并启动读协程
//
// 同一对端已有会话时旧会话被关闭。表已关闭或会话数达到上限时关闭 conn 并返回错误。
func (t *Table) Add(peer netip.AddrPort, conn Conn, cred types.Credential) error {
	peer = types.NormalizeAddrPort(peer)
	e := &entry{conn: conn, cred: cred}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		return ErrTableClosed
	}
	old, replacing := t.sessions[peer]
	if !replacing && t.opts.MaxActive > 0 && len(t.sessions) >= t.opts.MaxActive {
		t.mu.Unlock()
		_ = conn.Close()
		return ErrTooManySessions
	}
	t.sessions[peer] = e
	t.wg.Add(1)
	t.mu.Unlock()

	if replacing {
		_ = old.conn.Close()
	}

	go t.readLoop(peer, e)
	return nil
}

// Has 对端是否有活跃会话
func (t *Table) Has(peer netip.AddrPort) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[types.NormalizeAddrPort(peer)]
	return ok
}

// Send 向对端的活跃会话写入一条消息
func (t *Table) Send(peer netip.AddrPort, payload []byte) error {
	t.mu.Lock()
	e, ok := t.sessions[types.NormalizeAddrPort(peer)]
	t.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	return e.write(payload)
}

// Len 返回活跃会话数
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Close 关闭所有会话并等待读协程退出，可重复调用
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	sessions := t.sessions
	t.sessions = make(map[netip.AddrPort]*entry)
	t.mu.Unlock()

	var err error
	for _, e := range sessions {
		err = multierr.Append(err, ignoreClosed(e.conn.Close()))
	}
	t.wg.Wait()
	return err
}

func (t *Table) readLoop(peer netip.AddrPort, e *entry) {
	defer t.wg.Done()
	defer t.remove(peer, e)

	buf := make([]byte, t.opts.ReadSize)
	for {
		if t.opts.IdleTimeout > 0 {
			_ = e.conn.SetReadDeadline(time.Now().Add(t.opts.IdleTimeout))
		}
		n, err := e.conn.Read(buf)
		if n > 0 {
			payload := make([]byte, n)
			copy(payload, buf[:n])
			t.dispatch(types.NewInbound(peer, e.cred, payload, e.write))
		}
		if err != nil {
			if !isClosed(err) {
				logger.Debug("会话读取结束", "peer", peer, "err", err)
			}
			return
		}
	}
}

func (t *Table) dispatch(in *types.Inbound) {
	fn := t.deliver.Load()
	if fn == nil {
		logger.Debug("没有入站投递函数，丢弃消息", "peer", in.RemoteAddr())
		return
	}
	(*fn)(in)
}

func (t *Table) remove(peer netip.AddrPort, e *entry) {
	t.mu.Lock()
	if cur, ok := t.sessions[peer]; ok && cur == e {
		delete(t.sessions, peer)
	}
	t.mu.Unlock()
	_ = e.conn.Close()
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}

func ignoreClosed(err error) error {
	if err == nil || isClosed(err) {
		return nil
	}
	return err
}
