package transport

import (
	"fmt"
	"net/netip"

	"github.com/artikcloud/leshan/config"
	"github.com/artikcloud/leshan/internal/core/security"
	"github.com/artikcloud/leshan/internal/core/transport/dtls"
	"github.com/artikcloud/leshan/internal/core/transport/quic"
	"github.com/artikcloud/leshan/internal/core/transport/tcp"
	"github.com/artikcloud/leshan/internal/core/transport/udp"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	transportif "github.com/artikcloud/leshan/pkg/interfaces/transport"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("core/transport")

// Factory 连接器工厂
type Factory struct {
	role    types.Role
	carrier types.Carrier
	tuning  config.TuningConfig
}

// 确保实现接口
var _ transportif.ConnectorFactory = (*Factory)(nil)

// NewFactory 创建连接器工厂
//
// tuning 中的零值由角色默认值填充，调用方设置的值保持不变。
func NewFactory(role types.Role, carrier types.Carrier, tuning config.TuningConfig) *Factory {
	if carrier == "" {
		carrier = types.CarrierUDP
	}
	return &Factory{
		role:    role,
		carrier: carrier,
		tuning:  tuning.ApplyDefaults(role),
	}
}

// Carrier 返回载体
func (f *Factory) Carrier() types.Carrier { return f.carrier }

// Tuning 返回生效的调优参数
func (f *Factory) Tuning() config.TuningConfig { return f.tuning }

// CreatePlaintext 创建非安全连接器
func (f *Factory) CreatePlaintext(addr netip.AddrPort) (transportif.Connector, error) {
	logger.Debug("创建非安全连接器", "carrier", f.carrier, "addr", addr, "role", f.role)

	switch f.carrier {
	case types.CarrierTCP:
		return tcp.NewPlaintext(f.role, addr, tcp.Options{
			ReadSize:         f.tuning.MaxMessageSize,
			MaxActive:        f.tuning.MaxActivePeers,
			HandshakeTimeout: f.tuning.HandshakeTimeout.Duration(),
			IdleTimeout:      f.tuning.IdleTimeout.Duration(),
		})
	case types.CarrierUDP, types.CarrierQUIC:
		return udp.Listen(addr, f.tuning.MaxMessageSize)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownCarrier, f.carrier)
	}
}

// CreateSecure 创建安全连接器
//
// sec 为 nil 时返回 security.ErrNoSecurityContext。
func (f *Factory) CreateSecure(addr netip.AddrPort, sec *securityif.Context) (transportif.Connector, error) {
	if sec == nil {
		return nil, security.ErrNoSecurityContext
	}
	logger.Debug("创建安全连接器", "carrier", f.carrier, "addr", addr, "role", f.role, "mode", sec.Mode())

	switch f.carrier {
	case types.CarrierUDP:
		return dtls.New(f.role, addr, sec, dtls.Options{
			ReadSize:         f.tuning.MaxMessageSize,
			MaxActive:        f.tuning.MaxActivePeers,
			HandshakeTimeout: f.tuning.HandshakeTimeout.Duration(),
			IdleTimeout:      f.tuning.IdleTimeout.Duration(),
		})
	case types.CarrierTCP:
		return tcp.NewTLS(f.role, addr, sec, tcp.Options{
			ReadSize:         f.tuning.MaxMessageSize,
			MaxActive:        f.tuning.MaxActivePeers,
			HandshakeTimeout: f.tuning.HandshakeTimeout.Duration(),
			IdleTimeout:      f.tuning.IdleTimeout.Duration(),
		})
	case types.CarrierQUIC:
		return quic.New(f.role, addr, sec, quic.Options{
			ReadSize:         f.tuning.MaxMessageSize,
			MaxActive:        f.tuning.MaxActivePeers,
			HandshakeTimeout: f.tuning.HandshakeTimeout.Duration(),
			IdleTimeout:      f.tuning.IdleTimeout.Duration(),
		})
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownCarrier, f.carrier)
	}
}

// Scheme 返回载体与安全性对应的 URI scheme
//
//	udp:  coap / coaps
//	tcp:  coap+tcp / coaps+tcp
//	quic: coap / coaps+quic
func Scheme(carrier types.Carrier, secure bool) string {
	switch {
	case carrier == types.CarrierTCP && secure:
		return "coaps+tcp"
	case carrier == types.CarrierTCP:
		return "coap+tcp"
	case carrier == types.CarrierQUIC && secure:
		return "coaps+quic"
	case secure:
		return "coaps"
	default:
		return "coap"
	}
}
