package identity

import (
	"crypto/x509"
	"fmt"
	"net/netip"

	"github.com/artikcloud/leshan/pkg/types"
)

// Resolver 身份解析器
//
// 无状态，零值可用。
type Resolver struct{}

// NewResolver 创建身份解析器
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve 解析一次入站交互的对端身份
//
// 凭证存在但无法识别时返回 *ResolutionError，不会退化为 Unsecured。
func (r *Resolver) Resolve(ex types.Exchange) (types.PeerIdentity, error) {
	peer := types.NormalizeAddrPort(ex.RemoteAddr())
	if !peer.IsValid() {
		return types.PeerIdentity{}, ErrMissingPeerAddress
	}

	cred := ex.SenderCredential()
	if cred == nil {
		return types.NewUnsecuredIdentity(peer)
	}

	switch c := cred.(type) {
	case types.PSKCredential:
		return resolvePSK(peer, c.Identity)
	case *types.PSKCredential:
		if c == nil {
			return resolvePSK(peer, "")
		}
		return resolvePSK(peer, c.Identity)
	case types.RPKCredential:
		return resolveRPK(peer, c.PublicKey)
	case *types.RPKCredential:
		if c == nil {
			return resolveRPK(peer, nil)
		}
		return resolveRPK(peer, c.PublicKey)
	case *types.X500Principal:
		if c == nil {
			return types.PeerIdentity{}, resolutionError(ErrInvalidCredential, peer, types.CredentialX500, "nil principal")
		}
		return resolveCertificate(peer, c)
	case *types.X509CertPath:
		if c == nil {
			return types.PeerIdentity{}, resolutionError(ErrInvalidCredential, peer, types.CredentialX509, "nil certificate path")
		}
		return resolveCertificate(peer, c)
	case types.DistinguishedNamer:
		return resolveCertificate(peer, c)
	default:
		return types.PeerIdentity{}, resolutionError(ErrUnsupportedCredentialType, peer, credentialTypeOf(cred),
			fmt.Sprintf("%T", cred))
	}
}

// credentialTypeOf 读取凭证类型；对 nil 接收者 panic 的实现返回空值
func credentialTypeOf(cred types.Credential) (ct types.CredentialType) {
	defer func() {
		if recover() != nil {
			ct = ""
		}
	}()
	return cred.CredentialType()
}

func resolvePSK(peer netip.AddrPort, label string) (types.PeerIdentity, error) {
	if label == "" {
		return types.PeerIdentity{}, resolutionError(ErrInvalidCredential, peer, types.CredentialPSK, "PSK identity empty")
	}
	return types.NewPSKIdentity(peer, label)
}

func resolveRPK(peer netip.AddrPort, key []byte) (types.PeerIdentity, error) {
	if len(key) == 0 {
		return types.PeerIdentity{}, resolutionError(ErrInvalidCredential, peer, types.CredentialRPK, "public key empty")
	}
	return types.NewRPKIdentity(peer, key)
}

func resolveCertificate(peer netip.AddrPort, c types.DistinguishedNamer) (types.PeerIdentity, error) {
	var chain []*x509.Certificate
	if cc, ok := c.(types.CertificateChainer); ok {
		chain = cc.CertificateChain()
	}

	var leaf *x509.Certificate
	if len(chain) > 0 {
		leaf = chain[0]
	}

	dn := c.DistinguishedName()
	cn, ok := commonNameOf(leaf, dn)
	if !ok {
		return types.PeerIdentity{}, resolutionError(ErrMissingCommonName, peer, c.CredentialType(),
			fmt.Sprintf("no CN in %q", dn))
	}
	return types.NewX509Identity(peer, cn, chain)
}
