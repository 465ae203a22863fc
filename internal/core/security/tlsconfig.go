package security

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/types"
)

// TLSConfig 为 TLS 与 QUIC 载体构建 crypto/tls 配置
//
// 上下文只有 PSK 材料时返回 ErrPSKUnsupported。nextProtos 用于 ALPN（QUIC 必需）。
func TLSConfig(sec *securityif.Context, role types.Role, nextProtos ...string) (*tls.Config, error) {
	if sec == nil {
		return nil, ErrNoSecurityContext
	}
	if !sec.HasCertificate() {
		if sec.HasPSK() {
			return nil, ErrPSKUnsupported
		}
		return nil, ErrNoCertificate
	}

	cfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{*sec.Certificate},
		NextProtos:   nextProtos,
	}

	switch role {
	case types.RoleServer:
		if sec.RawPublicKey {
			cfg.ClientAuth = tls.RequireAnyClientCert
			cfg.VerifyPeerCertificate = verifyPinnedKey(sec.TrustedPublicKeys)
			break
		}
		if len(sec.TrustedCertificates) == 0 {
			return nil, ErrNoTrustAnchors
		}
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
		cfg.ClientCAs = certPool(sec.TrustedCertificates)

	case types.RoleClient:
		cfg.ServerName = sec.ServerName
		if sec.RawPublicKey {
			if len(sec.TrustedPublicKeys) == 0 {
				return nil, ErrNoTrustedKeys
			}
			// 证书链不校验，身份由固定公钥保证
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

func certPool(certs []*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool
}

// verifyPinnedKey 校验对端叶证书公钥在信任列表中，列表为空时接受任意公钥
func verifyPinnedKey(trusted [][]byte) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return ErrNoPeerCertificate
		}
		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("解析对端证书失败: %w", err)
		}
		if len(trusted) == 0 {
			return nil
		}
		for _, key := range trusted {
			if bytes.Equal(key, leaf.RawSubjectPublicKeyInfo) {
				return nil
			}
		}
		return ErrUntrustedPublicKey
	}
}
