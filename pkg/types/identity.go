package types

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"net/netip"
)

// ============================================================================
//                              AuthVariant 认证变体
// ============================================================================

// AuthVariant 对端认证结果
//
// 封闭接口，只有本包定义的四种实现：Unsecured、PreSharedKey、RawPublicKey、Certificate。
// 一个 PeerIdentity 恰好持有一个变体，互斥由类型结构保证。
type AuthVariant interface {
	// Kind 返回变体标签
	Kind() AuthKind

	equal(other AuthVariant) bool
	payload() string
}

// Unsecured 未认证（无凭证）
type Unsecured struct{}

// Kind 返回 AuthUnsecured
func (Unsecured) Kind() AuthKind { return AuthUnsecured }

func (Unsecured) equal(other AuthVariant) bool {
	_, ok := other.(Unsecured)
	return ok
}

func (Unsecured) payload() string { return "" }

// PreSharedKey PSK 认证，携带 PSK 标识
type PreSharedKey struct {
	identity string
}

// Identity 返回 PSK 标识
func (p PreSharedKey) Identity() string { return p.identity }

// Kind 返回 AuthPSK
func (PreSharedKey) Kind() AuthKind { return AuthPSK }

func (p PreSharedKey) equal(other AuthVariant) bool {
	o, ok := other.(PreSharedKey)
	return ok && o.identity == p.identity
}

func (p PreSharedKey) payload() string { return p.identity }

// RawPublicKey RPK 认证，携带 PKIX (SubjectPublicKeyInfo DER) 编码的公钥
type RawPublicKey struct {
	key []byte
}

// Bytes 返回公钥字节的副本
func (r RawPublicKey) Bytes() []byte { return bytes.Clone(r.key) }

// PublicKey 将公钥字节解析为 crypto.PublicKey
func (r RawPublicKey) PublicKey() (crypto.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(r.key)
	if err != nil {
		return nil, fmt.Errorf("parse raw public key: %w", err)
	}
	return pub, nil
}

// Kind 返回 AuthRPK
func (RawPublicKey) Kind() AuthKind { return AuthRPK }

func (r RawPublicKey) equal(other AuthVariant) bool {
	o, ok := other.(RawPublicKey)
	return ok && bytes.Equal(o.key, r.key)
}

func (r RawPublicKey) payload() string { return hex.EncodeToString(r.key) }

// Certificate X.509 认证，携带主体 Common Name 与可选证书链
//
// 证书链只是佐证材料，不参与相等性比较：两个 CN 相同的身份视为同一主体。
type Certificate struct {
	commonName string
	chain      []*x509.Certificate
}

// CommonName 返回证书主体的 Common Name
func (c Certificate) CommonName() string { return c.commonName }

// Chain 返回证书链副本（叶证书在前），可能为 nil
func (c Certificate) Chain() []*x509.Certificate {
	if len(c.chain) == 0 {
		return nil
	}
	out := make([]*x509.Certificate, len(c.chain))
	copy(out, c.chain)
	return out
}

// HasChain 是否附带证书链
func (c Certificate) HasChain() bool { return len(c.chain) > 0 }

// Kind 返回 AuthX509
func (Certificate) Kind() AuthKind { return AuthX509 }

func (c Certificate) equal(other AuthVariant) bool {
	o, ok := other.(Certificate)
	return ok && o.commonName == c.commonName
}

func (c Certificate) payload() string { return c.commonName }

// ============================================================================
//                              PeerIdentity 对端身份
// ============================================================================

// PeerIdentity 请求发送方身份
//
// 由对端地址与认证变体组成，构造后不可变。
// 相等性与 Key() 都定义在 (地址, 变体) 上，上层据此关联同一逻辑对端的多次交互。
type PeerIdentity struct {
	addr netip.AddrPort
	auth AuthVariant
}

func newIdentity(addr netip.AddrPort, auth AuthVariant) (PeerIdentity, error) {
	if !addr.IsValid() {
		return PeerIdentity{}, ErrInvalidPeerAddress
	}
	return PeerIdentity{addr: NormalizeAddrPort(addr), auth: auth}, nil
}

// NewUnsecuredIdentity 创建未认证身份
func NewUnsecuredIdentity(addr netip.AddrPort) (PeerIdentity, error) {
	return newIdentity(addr, Unsecured{})
}

// NewPSKIdentity 创建 PSK 身份
//
// 空 PSK 标识被拒绝（ErrEmptyPSKIdentity），不会退化为未认证身份。
func NewPSKIdentity(addr netip.AddrPort, identity string) (PeerIdentity, error) {
	if identity == "" {
		return PeerIdentity{}, ErrEmptyPSKIdentity
	}
	return newIdentity(addr, PreSharedKey{identity: identity})
}

// NewRPKIdentity 创建 RPK 身份，key 为 PKIX 编码公钥（会被复制）
func NewRPKIdentity(addr netip.AddrPort, key []byte) (PeerIdentity, error) {
	if len(key) == 0 {
		return PeerIdentity{}, ErrEmptyPublicKey
	}
	return newIdentity(addr, RawPublicKey{key: bytes.Clone(key)})
}

// NewX509Identity 创建证书身份
//
// chain 可为 nil（只恢复出了主体名称的情况）；commonName 不能为空。
func NewX509Identity(addr netip.AddrPort, commonName string, chain []*x509.Certificate) (PeerIdentity, error) {
	if commonName == "" {
		return PeerIdentity{}, ErrEmptyCommonName
	}
	var cp []*x509.Certificate
	if len(chain) > 0 {
		cp = make([]*x509.Certificate, len(chain))
		copy(cp, chain)
	}
	return newIdentity(addr, Certificate{commonName: commonName, chain: cp})
}

// PeerAddress 返回对端地址
func (id PeerIdentity) PeerAddress() netip.AddrPort {
	return id.addr
}

// Variant 返回认证变体；零值身份返回 Unsecured
func (id PeerIdentity) Variant() AuthVariant {
	if id.auth == nil {
		return Unsecured{}
	}
	return id.auth
}

// Kind 返回认证变体标签
func (id PeerIdentity) Kind() AuthKind {
	return id.Variant().Kind()
}

// IsValid 是否由构造函数创建（零值无效）
func (id PeerIdentity) IsValid() bool {
	return id.addr.IsValid() && id.auth != nil
}

// IsSecure 是否经过认证（变体不是 Unsecured）
func (id PeerIdentity) IsSecure() bool {
	return id.Kind() != AuthUnsecured
}

// IsPSK 是否为 PSK 身份
func (id PeerIdentity) IsPSK() bool { return id.Kind() == AuthPSK }

// IsRPK 是否为 RPK 身份
func (id PeerIdentity) IsRPK() bool { return id.Kind() == AuthRPK }

// IsX509 是否为证书身份
func (id PeerIdentity) IsX509() bool { return id.Kind() == AuthX509 }

// PSKIdentity 返回 PSK 标识，非 PSK 身份返回空字符串
func (id PeerIdentity) PSKIdentity() string {
	if p, ok := id.auth.(PreSharedKey); ok {
		return p.identity
	}
	return ""
}

// RawPublicKey 返回 RPK 公钥字节副本，非 RPK 身份返回 nil
func (id PeerIdentity) RawPublicKey() []byte {
	if r, ok := id.auth.(RawPublicKey); ok {
		return r.Bytes()
	}
	return nil
}

// X509CommonName 返回证书 Common Name，非证书身份返回空字符串
func (id PeerIdentity) X509CommonName() string {
	if c, ok := id.auth.(Certificate); ok {
		return c.commonName
	}
	return ""
}

// X509CertChain 返回证书链副本，非证书身份或无链时返回 nil
func (id PeerIdentity) X509CertChain() []*x509.Certificate {
	if c, ok := id.auth.(Certificate); ok {
		return c.Chain()
	}
	return nil
}

// Equal 比较两个身份：地址与认证变体（含负载）都相同才相等
func (id PeerIdentity) Equal(other PeerIdentity) bool {
	return id.addr == other.addr && id.Variant().equal(other.Variant())
}

// Key 返回可用作 map 键的规范字符串
//
// 对任意 a, b：a.Equal(b) 当且仅当 a.Key() == b.Key()。
func (id PeerIdentity) Key() string {
	v := id.Variant()
	return fmt.Sprintf("%s/%s/%q", id.addr, v.Kind(), v.payload())
}

// String 返回可读表示
func (id PeerIdentity) String() string {
	switch v := id.Variant().(type) {
	case PreSharedKey:
		return fmt.Sprintf("Identity %s[psk=%s]", id.addr, v.identity)
	case RawPublicKey:
		return fmt.Sprintf("Identity %s[rpk=%s]", id.addr, v.payload())
	case Certificate:
		return fmt.Sprintf("Identity %s[x509=%s]", id.addr, v.commonName)
	default:
		return fmt.Sprintf("Identity %s[unsecure]", id.addr)
	}
}
