package cmd

import (
	"context"
	"fmt"

	"github.com/artikcloud/leshan/config"
	endpointif "github.com/artikcloud/leshan/pkg/interfaces/endpoint"
	"github.com/artikcloud/leshan/pkg/lib/log"
	"github.com/artikcloud/leshan/pkg/types"
)

var logger = log.Logger("lwm2md")

// setupLogging 按 --log-level 设置日志级别，LWM2M_LOG_LEVEL 优先
func setupLogging() error {
	if log.ConfigureFromEnv() {
		return nil
	}
	level, ok := log.ParseLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}
	log.SetLevel(level)
	return nil
}

// loadConfig 加载配置文件并应用命令行覆盖
func loadConfig(role types.Role) (*config.Config, error) {
	cfg := config.NewConfig()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if carrier != "" {
		c, err := types.ParseCarrier(carrier)
		if err != nil {
			return nil, err
		}
		cfg.Endpoint = cfg.Endpoint.WithCarrier(c)
	}
	if plaintextAddr != "" {
		cfg.Endpoint = cfg.Endpoint.WithPlaintextAddr(plaintextAddr)
	}
	if secureAddr != "" {
		cfg.Endpoint = cfg.Endpoint.WithSecureAddr(secureAddr)
	}
	if noPlaintext {
		cfg.Endpoint = cfg.Endpoint.WithPlaintext(false)
	}
	if noSecure {
		cfg.Endpoint = cfg.Endpoint.WithSecure(false)
	}

	if pskIdentity != "" || pskKey != "" {
		if role == types.RoleServer {
			if cfg.Security.PSKKeys == nil {
				cfg.Security.PSKKeys = make(map[string]string)
			}
			cfg.Security.PSKKeys[pskIdentity] = pskKey
		} else {
			cfg.Security = cfg.Security.WithPSK(pskIdentity, pskKey)
		}
	}
	if certFile != "" || keyFile != "" {
		cfg.Security = cfg.Security.WithCertificate(certFile, keyFile)
	}
	if len(caFiles) > 0 {
		cfg.Security = cfg.Security.WithCAFiles(caFiles...)
	}
	if rawKey {
		cfg.Security.RawPublicKey = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logHandler 记录每条入站交互的对端身份
var logHandler = endpointif.HandlerFunc(func(_ context.Context, peer types.PeerIdentity, in *types.Inbound) {
	logger.Info("收到入站交互",
		"peer", peer.String(),
		"secure", peer.IsSecure(),
		"bytes", len(in.Payload()))
})
