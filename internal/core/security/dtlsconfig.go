package security

import (
	"bytes"
	"crypto/tls"
	"fmt"

	"github.com/pion/dtls/v2"

	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/types"
)

// LwM2M 要求的 PSK 套件（CCM_8 为强制，GCM 为推荐）
var pskCipherSuites = []dtls.CipherSuiteID{
	dtls.TLS_PSK_WITH_AES_128_CCM_8,
	dtls.TLS_PSK_WITH_AES_128_GCM_SHA256,
}

// DTLSConfig 为 DTLS 载体构建 pion/dtls 配置
//
// 上下文带 PSK 材料时使用 PSK 套件，否则使用证书。
// 服务端只有单个 PSK 标识与密钥时，只接受该标识。
func DTLSConfig(sec *securityif.Context, role types.Role) (*dtls.Config, error) {
	if sec == nil {
		return nil, ErrNoSecurityContext
	}

	cfg := &dtls.Config{
		ExtendedMasterSecret: dtls.RequireExtendedMasterSecret,
	}

	if sec.HasPSK() {
		if sec.HasCertificate() {
			return nil, ErrPSKAndCertificate
		}
		cfg.CipherSuites = pskCipherSuites

		switch role {
		case types.RoleServer:
			store := sec.PSKStore
			if store == nil {
				single := NewInMemoryPSKStore()
				if err := single.Add(sec.PSKIdentity, sec.PSKKey); err != nil {
					return nil, err
				}
				store = single
			}
			cfg.PSK = func(identity []byte) ([]byte, error) {
				return store.Key(string(identity))
			}

		case types.RoleClient:
			if sec.PSKIdentity == "" || len(sec.PSKKey) == 0 {
				return nil, ErrNoPSKIdentity
			}
			key := bytes.Clone(sec.PSKKey)
			cfg.PSK = func([]byte) ([]byte, error) {
				return key, nil
			}
			cfg.PSKIdentityHint = []byte(sec.PSKIdentity)

		default:
			return nil, fmt.Errorf("unknown role %v", role)
		}
		return cfg, nil
	}

	if !sec.HasCertificate() {
		return nil, ErrNoCertificate
	}
	cfg.Certificates = []tls.Certificate{*sec.Certificate}

	switch role {
	case types.RoleServer:
		if sec.RawPublicKey {
			cfg.ClientAuth = dtls.RequireAnyClientCert
			cfg.VerifyPeerCertificate = verifyPinnedKey(sec.TrustedPublicKeys)
			break
		}
		if len(sec.TrustedCertificates) == 0 {
			return nil, ErrNoTrustAnchors
		}
		cfg.ClientAuth = dtls.RequireAndVerifyClientCert
		cfg.ClientCAs = certPool(sec.TrustedCertificates)

	case types.RoleClient:
		cfg.ServerName = sec.ServerName
		if sec.RawPublicKey {
			if len(sec.TrustedPublicKeys) == 0 {
				return nil, ErrNoTrustedKeys
			}
			cfg.InsecureSkipVerify = true
			cfg.VerifyPeerCertificate = verifyPinnedKey(sec.TrustedPublicKeys)
			break
		}
		if len(sec.TrustedCertificates) == 0 {
			return nil, ErrNoTrustAnchors
		}
		cfg.RootCAs = certPool(sec.TrustedCertificates)

	default:
		return nil, fmt.Errorf("unknown role %v", role)
	}

	return cfg, nil
}
