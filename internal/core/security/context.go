package security

import (
	"encoding/hex"
	"fmt"

	"github.com/artikcloud/leshan/config"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
)

// ContextFromConfig 从文件形式的安全配置构建安全上下文
//
// 配置为空时返回 nil：安全端点是否需要上下文由连接器工厂判断。
func ContextFromConfig(cfg config.SecurityConfig) (*securityif.Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.IsEmpty() {
		return nil, nil
	}

	sec := &securityif.Context{
		PSKIdentity:  cfg.PSKIdentity,
		RawPublicKey: cfg.RawPublicKey,
		ServerName:   cfg.ServerName,
	}

	if cfg.PSKKey != "" {
		key, err := hex.DecodeString(cfg.PSKKey)
		if err != nil {
			return nil, fmt.Errorf("解析 PSK 密钥失败: %w", err)
		}
		sec.PSKKey = key
	}

	if len(cfg.PSKKeys) > 0 {
		store := NewInMemoryPSKStore()
		for identity, hexKey := range cfg.PSKKeys {
			key, err := hex.DecodeString(hexKey)
			if err != nil {
				return nil, fmt.Errorf("解析 PSK 密钥失败 (%s): %w", identity, err)
			}
			if err := store.Add(identity, key); err != nil {
				return nil, err
			}
		}
		sec.PSKStore = store
	}

	if cfg.CertFile != "" {
		cert, err := LoadCertificate(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		sec.Certificate = cert
	}

	if len(cfg.CAFiles) > 0 {
		cas, err := LoadCertificates(cfg.CAFiles...)
		if err != nil {
			return nil, err
		}
		sec.TrustedCertificates = cas
	}

	if len(cfg.TrustedKeyFiles) > 0 {
		keys, err := LoadPublicKeys(cfg.TrustedKeyFiles...)
		if err != nil {
			return nil, err
		}
		sec.TrustedPublicKeys = keys
	}

	return sec, nil
}
