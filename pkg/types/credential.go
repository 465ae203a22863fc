package types

import "crypto/x509"

// ============================================================================
//                              Credential 凭证描述
// ============================================================================

// CredentialType 凭证类型标签
type CredentialType string

const (
	// CredentialPSK 预共享密钥标识
	CredentialPSK CredentialType = "psk"
	// CredentialRPK 原始公钥
	CredentialRPK CredentialType = "rpk"
	// CredentialX500 仅有 X.500 可分辨名称的主体
	CredentialX500 CredentialType = "x500"
	// CredentialX509 X.509 证书链
	CredentialX509 CredentialType = "x509"
)

// Credential 传输层在完成认证后暴露的发送方凭证
//
// 本包提供 PSKCredential、RPKCredential、X500Principal、X509CertPath 四种实现；
// 传输层也可以提供其他实现，识别失败时由身份解析器报告 unsupported。
type Credential interface {
	CredentialType() CredentialType
}

// DistinguishedNamer 携带可分辨名称的凭证（证书类主体）
type DistinguishedNamer interface {
	Credential
	// DistinguishedName 返回主体可分辨名称字符串，如 "CN=device-42,O=Acme"
	DistinguishedName() string
}

// CertificateChainer 附带证书链的凭证
type CertificateChainer interface {
	CertificateChain() []*x509.Certificate
}

// PSKCredential PSK 握手中对端声明的标识
type PSKCredential struct {
	Identity string
}

// CredentialType 返回 CredentialPSK
func (PSKCredential) CredentialType() CredentialType { return CredentialPSK }

// RPKCredential 对端原始公钥（PKIX SubjectPublicKeyInfo DER）
type RPKCredential struct {
	PublicKey []byte
}

// CredentialType 返回 CredentialRPK
func (RPKCredential) CredentialType() CredentialType { return CredentialRPK }

// X500Principal 只有可分辨名称、没有证书链的主体
type X500Principal struct {
	Name string
}

// CredentialType 返回 CredentialX500
func (X500Principal) CredentialType() CredentialType { return CredentialX500 }

// DistinguishedName 返回主体名称
func (p X500Principal) DistinguishedName() string { return p.Name }

// X509CertPath 对端证书链（叶证书在前）
type X509CertPath struct {
	Chain []*x509.Certificate
}

// CredentialType 返回 CredentialX509
func (X509CertPath) CredentialType() CredentialType { return CredentialX509 }

// Leaf 返回叶证书，链为空时返回 nil
func (p X509CertPath) Leaf() *x509.Certificate {
	if len(p.Chain) == 0 {
		return nil
	}
	return p.Chain[0]
}

// DistinguishedName 返回叶证书主体的 RFC 2253 字符串
func (p X509CertPath) DistinguishedName() string {
	leaf := p.Leaf()
	if leaf == nil {
		return ""
	}
	return leaf.Subject.String()
}

// CertificateChain 返回证书链
func (p X509CertPath) CertificateChain() []*x509.Certificate {
	return p.Chain
}

// 确保实现接口
var (
	_ DistinguishedNamer = X500Principal{}
	_ DistinguishedNamer = X509CertPath{}
	_ CertificateChainer = X509CertPath{}
)
