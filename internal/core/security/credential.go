package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/pion/dtls/v2"

	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/types"
)

// CredentialFromTLS 把 TLS 握手结果转换为对端凭证
//
// 对端没有证书时返回 nil。rawPublicKey 为 true 时只取叶证书公钥。
func CredentialFromTLS(state tls.ConnectionState, rawPublicKey bool) types.Credential {
	return certificateCredential(state.PeerCertificates, rawPublicKey)
}

// CredentialFromDTLS 把 DTLS 握手结果转换为对端凭证
//
// PSK 模式下服务端取客户端声明的标识，客户端取自己握手使用的标识。
// 标识为空时仍返回 PSKCredential，由身份解析器拒绝。
func CredentialFromDTLS(state dtls.State, sec *securityif.Context, role types.Role) (types.Credential, error) {
	if sec.HasPSK() {
		if role == types.RoleClient {
			return types.PSKCredential{Identity: sec.PSKIdentity}, nil
		}
		return types.PSKCredential{Identity: string(state.IdentityHint)}, nil
	}

	if len(state.PeerCertificates) == 0 {
		return nil, nil
	}
	chain := make([]*x509.Certificate, 0, len(state.PeerCertificates))
	for _, raw := range state.PeerCertificates {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, fmt.Errorf("解析对端证书失败: %w", err)
		}
		chain = append(chain, cert)
	}
	return certificateCredential(chain, sec != nil && sec.RawPublicKey), nil
}

func certificateCredential(chain []*x509.Certificate, rawPublicKey bool) types.Credential {
	if len(chain) == 0 {
		return nil
	}
	if rawPublicKey {
		return types.RPKCredential{PublicKey: chain[0].RawSubjectPublicKeyInfo}
	}
	return types.X509CertPath{Chain: chain}
}
