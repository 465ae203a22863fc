package quic

import (
	"crypto/tls"

	"github.com/artikcloud/leshan/internal/core/security"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/types"
)

// tlsConfig 构建 QUIC 握手使用的 TLS 1.3 配置
func tlsConfig(sec *securityif.Context, role types.Role) (*tls.Config, error) {
	cfg, err := security.TLSConfig(sec, role, ALPN)
	if err != nil {
		return nil, err
	}
	cfg.MinVersion = tls.VersionTLS13
	return cfg, nil
}
