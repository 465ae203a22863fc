package types

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// NormalizeAddrPort 规范化对端地址
//
// IPv4-mapped IPv6 地址（::ffff:a.b.c.d）被还原为 IPv4，
// 使同一对端经由双栈 socket 到达时得到相同的身份。
func NormalizeAddrPort(ap netip.AddrPort) netip.AddrPort {
	if !ap.IsValid() {
		return ap
	}
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

// AddrPortFromNet 从 net.Addr 提取规范化的 netip.AddrPort
func AddrPortFromNet(addr net.Addr) (netip.AddrPort, error) {
	switch a := addr.(type) {
	case nil:
		return netip.AddrPort{}, ErrInvalidPeerAddress
	case *net.UDPAddr:
		if a == nil {
			return netip.AddrPort{}, ErrInvalidPeerAddress
		}
		return NormalizeAddrPort(a.AddrPort()), nil
	case *net.TCPAddr:
		if a == nil {
			return netip.AddrPort{}, ErrInvalidPeerAddress
		}
		return NormalizeAddrPort(a.AddrPort()), nil
	default:
		ap, err := netip.ParseAddrPort(addr.String())
		if err != nil {
			return netip.AddrPort{}, fmt.Errorf("%w: %s", ErrInvalidPeerAddress, addr.String())
		}
		return NormalizeAddrPort(ap), nil
	}
}

// WildcardAddrPort 返回 IPv4 通配地址与指定端口
func WildcardAddrPort(port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.IPv4Unspecified(), port)
}

// ParseBindAddr 解析绑定地址
//
// 支持 "host:port"、":port" 两种形式，host 为空时使用通配地址。
// 主机名不会被解析，必须是字面 IP。
func ParseBindAddr(s string) (netip.AddrPort, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid bind address %q: %w", s, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid bind port %q", portStr)
	}
	if host == "" {
		return WildcardAddrPort(uint16(port)), nil
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid bind host %q: %w", host, err)
	}
	return netip.AddrPortFrom(ip.Unmap(), uint16(port)), nil
}
