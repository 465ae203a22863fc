package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artikcloud/leshan/pkg/types"
)

// fakeExchange 测试用交互
type fakeExchange struct {
	addr netip.AddrPort
	cred types.Credential
}

func (e fakeExchange) RemoteAddr() netip.AddrPort        { return e.addr }
func (e fakeExchange) SenderCredential() types.Credential { return e.cred }

// opaqueCredential 解析器不认识的凭证
type opaqueCredential struct{}

func (opaqueCredential) CredentialType() types.CredentialType { return "kerberos" }

func exchange(addr string, cred types.Credential) fakeExchange {
	return fakeExchange{addr: netip.MustParseAddrPort(addr), cred: cred}
}

func TestResolve_NoCredential(t *testing.T) {
	r := NewResolver()
	ex := exchange("10.0.0.6:5683", nil)

	id, err := r.Resolve(ex)
	require.NoError(t, err)

	want, err := types.NewUnsecuredIdentity(ex.addr)
	require.NoError(t, err)
	assert.True(t, want.Equal(id))
	assert.False(t, id.IsSecure())

	t.Log("✅ 无凭证解析为 Unsecured")
}

func TestResolve_PSK(t *testing.T) {
	r := NewResolver()

	id, err := r.Resolve(exchange("10.0.0.5:5684", types.PSKCredential{Identity: "sensor-17"}))
	require.NoError(t, err)
	assert.True(t, id.IsSecure())
	assert.True(t, id.IsPSK())
	assert.Equal(t, "sensor-17", id.PSKIdentity())
	assert.Equal(t, "10.0.0.5:5684", id.PeerAddress().String())

	id, err = r.Resolve(exchange("10.0.0.5:5684", &types.PSKCredential{Identity: "sensor-18"}))
	require.NoError(t, err)
	assert.Equal(t, "sensor-18", id.PSKIdentity())
}

func TestResolve_PSKEmpty(t *testing.T) {
	r := NewResolver()

	for _, cred := range []types.Credential{
		types.PSKCredential{},
		(*types.PSKCredential)(nil),
	} {
		_, err := r.Resolve(exchange("10.0.0.5:5684", cred))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCredential)

		var rerr *ResolutionError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, types.CredentialPSK, rerr.CredentialType)
		assert.Equal(t, "invalid_credential", rerr.Reason())
	}
}

func TestResolve_RPK(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	r := NewResolver()
	id, err := r.Resolve(exchange("[2001:db8::5]:5684", types.RPKCredential{PublicKey: der}))
	require.NoError(t, err)
	assert.True(t, id.IsRPK())
	assert.Equal(t, der, id.RawPublicKey())

	_, err = r.Resolve(exchange("[2001:db8::5]:5684", types.RPKCredential{}))
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestResolve_DistinguishedName(t *testing.T) {
	tests := []struct {
		name string
		dn   string
		cn   string
	}{
		{"CN 在前", "CN=device-42,O=Acme", "device-42"},
		{"逗号后有空格", "CN=node-1, O=Org", "node-1"},
		{"CN 在后", "O=Acme,OU=IoT,CN=gw-7", "gw-7"},
		{"只有 CN", "CN=solo", "solo"},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := r.Resolve(exchange("10.0.0.7:5684", types.X500Principal{Name: tt.dn}))
			require.NoError(t, err)
			assert.True(t, id.IsX509())
			assert.Equal(t, tt.cn, id.X509CommonName())
			assert.Nil(t, id.X509CertChain())
		})
	}
}

func TestResolve_MissingCommonName(t *testing.T) {
	r := NewResolver()

	for _, dn := range []string{"O=Acme,OU=IoT", "", "cn=lower-case", "CN=,O=Acme"} {
		t.Run(dn, func(t *testing.T) {
			_, err := r.Resolve(exchange("10.0.0.7:5684", types.X500Principal{Name: dn}))
			assert.ErrorIs(t, err, ErrMissingCommonName)

			var rerr *ResolutionError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, types.CredentialX500, rerr.CredentialType)
		})
	}
}

func TestResolve_CertificateChain(t *testing.T) {
	leaf := &x509.Certificate{Subject: pkix.Name{CommonName: "device-42", Organization: []string{"Acme"}}}
	ca := &x509.Certificate{Subject: pkix.Name{CommonName: "Acme Root"}}

	r := NewResolver()
	id, err := r.Resolve(exchange("10.0.0.7:5684", types.X509CertPath{Chain: []*x509.Certificate{leaf, ca}}))
	require.NoError(t, err)
	assert.Equal(t, "device-42", id.X509CommonName())
	require.Len(t, id.X509CertChain(), 2)
	assert.Same(t, leaf, id.X509CertChain()[0])

	// 叶证书没有 CN
	noCN := &x509.Certificate{Subject: pkix.Name{Organization: []string{"Acme"}}}
	_, err = r.Resolve(exchange("10.0.0.7:5684", types.X509CertPath{Chain: []*x509.Certificate{noCN}}))
	assert.ErrorIs(t, err, ErrMissingCommonName)

	// 空链
	_, err = r.Resolve(exchange("10.0.0.7:5684", types.X509CertPath{}))
	assert.ErrorIs(t, err, ErrMissingCommonName)
}

func TestResolve_CommaInCommonName(t *testing.T) {
	// 结构化主体优先，转义逗号不会截断 CN
	leaf := &x509.Certificate{Subject: pkix.Name{CommonName: "Acme, Inc. gateway"}}

	id, err := NewResolver().Resolve(exchange("10.0.0.7:5684", types.X509CertPath{Chain: []*x509.Certificate{leaf}}))
	require.NoError(t, err)
	assert.Equal(t, "Acme, Inc. gateway", id.X509CommonName())
}

func TestResolve_Unsupported(t *testing.T) {
	_, err := NewResolver().Resolve(exchange("10.0.0.8:5684", opaqueCredential{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedCredentialType)

	var rerr *ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, types.CredentialType("kerberos"), rerr.CredentialType)
	assert.Contains(t, err.Error(), "kerberos")
}

// nilPointerCredential 指针类型为 nil 时 CredentialType 会 panic
type nilPointerCredential struct{ kind types.CredentialType }

func (c nilPointerCredential) CredentialType() types.CredentialType { return c.kind }

func TestResolve_NilPointerCredentials(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name     string
		cred     types.Credential
		wantType types.CredentialType
	}{
		{"psk", (*types.PSKCredential)(nil), types.CredentialPSK},
		{"rpk", (*types.RPKCredential)(nil), types.CredentialRPK},
		{"x500", (*types.X500Principal)(nil), types.CredentialX500},
		{"x509", (*types.X509CertPath)(nil), types.CredentialX509},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = r.Resolve(exchange("10.0.0.9:5684", tt.cred))
			})
			assert.ErrorIs(t, err, ErrInvalidCredential)

			var rerr *ResolutionError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.wantType, rerr.CredentialType)
		})
	}

	t.Run("unknown nil pointer", func(t *testing.T) {
		var err error
		require.NotPanics(t, func() {
			_, err = r.Resolve(exchange("10.0.0.9:5684", (*nilPointerCredential)(nil)))
		})
		assert.ErrorIs(t, err, ErrUnsupportedCredentialType)
	})

	t.Log("✅ nil 指针凭证返回解析错误而不是 panic")
}

func TestResolve_MissingPeerAddress(t *testing.T) {
	_, err := NewResolver().Resolve(fakeExchange{cred: types.PSKCredential{Identity: "x"}})
	assert.ErrorIs(t, err, ErrMissingPeerAddress)

	var rerr *ResolutionError
	assert.False(t, errors.As(err, &rerr))
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver()
	ex := exchange("10.0.0.5:5684", types.PSKCredential{Identity: "sensor-17"})

	a, err := r.Resolve(ex)
	require.NoError(t, err)
	b, err := r.Resolve(ex)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
}

func TestResolve_Concurrent(t *testing.T) {
	r := NewResolver()
	ex := exchange("10.0.0.5:5684", types.X500Principal{Name: "CN=device-42,O=Acme"})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.Resolve(ex)
			assert.NoError(t, err)
			assert.Equal(t, "device-42", id.X509CommonName())
		}()
	}
	wg.Wait()
}

func TestExtractCommonName(t *testing.T) {
	cn, ok := ExtractCommonName("CN=device-42,O=Acme")
	assert.True(t, ok)
	assert.Equal(t, "device-42", cn)

	_, ok = ExtractCommonName("O=Acme")
	assert.False(t, ok)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "missing_common_name", Reason(ErrMissingCommonName))
	assert.Equal(t, "unsupported_credential_type", Reason(ErrUnsupportedCredentialType))
	assert.Equal(t, "missing_peer_address", Reason(ErrMissingPeerAddress))
	assert.Equal(t, "unknown", Reason(errors.New("x")))
}
