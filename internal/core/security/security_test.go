package security

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pion/dtls/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artikcloud/leshan/config"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/types"
)

// ============================================================================
// PSK 存储
// ============================================================================

func TestInMemoryPSKStore(t *testing.T) {
	s := NewInMemoryPSKStore()

	key := []byte{1, 2, 3}
	require.NoError(t, s.Add("sensor-17", key))
	key[0] = 9

	got, err := s.Key("sensor-17")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = s.Key("unknown")
	assert.ErrorIs(t, err, ErrUnknownPSKIdentity)

	assert.ErrorIs(t, s.Add("", key), ErrNoPSKIdentity)
	assert.ErrorIs(t, s.Add("x", nil), ErrNoPSKIdentity)

	s.Remove("sensor-17")
	assert.Equal(t, 0, s.Len())

	t.Log("✅ InMemoryPSKStore 测试通过")
}

// ============================================================================
// TLS 配置
// ============================================================================

func TestTLSConfig_Errors(t *testing.T) {
	pki := newTestPKI(t)

	_, err := TLSConfig(nil, types.RoleServer)
	assert.ErrorIs(t, err, ErrNoSecurityContext)

	_, err = TLSConfig(&securityif.Context{PSKIdentity: "a", PSKKey: []byte{1}}, types.RoleClient)
	assert.ErrorIs(t, err, ErrPSKUnsupported)

	_, err = TLSConfig(&securityif.Context{}, types.RoleServer)
	assert.ErrorIs(t, err, ErrNoCertificate)

	_, err = TLSConfig(&securityif.Context{Certificate: pki.server}, types.RoleServer)
	assert.ErrorIs(t, err, ErrNoTrustAnchors)

	_, err = TLSConfig(&securityif.Context{Certificate: pki.client, RawPublicKey: true}, types.RoleClient)
	assert.ErrorIs(t, err, ErrNoTrustedKeys)
}

func TestTLSConfig_Server(t *testing.T) {
	pki := newTestPKI(t)

	cfg, err := TLSConfig(&securityif.Context{
		Certificate:         pki.server,
		TrustedCertificates: []*x509.Certificate{pki.ca.Leaf},
	}, types.RoleServer, "coap")
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, cfg.ClientAuth)
	assert.NotNil(t, cfg.ClientCAs)
	assert.Equal(t, []string{"coap"}, cfg.NextProtos)

	cfg, err = TLSConfig(&securityif.Context{Certificate: pki.server, RawPublicKey: true}, types.RoleServer)
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAnyClientCert, cfg.ClientAuth)
	assert.NotNil(t, cfg.VerifyPeerCertificate)
}

// handshake 在内存管道上完成一次 TLS 握手，返回服务端看到的连接状态
func handshake(t *testing.T, serverCfg, clientCfg *tls.Config) (tls.ConnectionState, error) {
	t.Helper()

	// TLS 1.3 服务端握手末尾会写会话票据，net.Pipe 无缓冲会阻塞
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		cc, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			errc <- err
			return
		}
		defer cc.Close()
		cli := tls.Client(cc, clientCfg)
		_ = cli.SetDeadline(time.Now().Add(5 * time.Second))
		errc <- cli.Handshake()
		<-done
	}()

	sc, err := ln.Accept()
	require.NoError(t, err)
	defer sc.Close()

	srv := tls.Server(sc, serverCfg)
	_ = srv.SetDeadline(time.Now().Add(5 * time.Second))
	serr := srv.Handshake()
	if serr != nil {
		sc.Close()
	}
	cerr := <-errc
	if serr != nil {
		return tls.ConnectionState{}, serr
	}
	if cerr != nil {
		return tls.ConnectionState{}, cerr
	}
	return srv.ConnectionState(), nil
}

func TestTLS_X509Credential(t *testing.T) {
	pki := newTestPKI(t)
	anchors := []*x509.Certificate{pki.ca.Leaf}

	serverCfg, err := TLSConfig(&securityif.Context{Certificate: pki.server, TrustedCertificates: anchors}, types.RoleServer)
	require.NoError(t, err)
	clientCfg, err := TLSConfig(&securityif.Context{
		Certificate:         pki.client,
		TrustedCertificates: anchors,
		ServerName:          "lwm2m.test",
	}, types.RoleClient)
	require.NoError(t, err)

	state, err := handshake(t, serverCfg, clientCfg)
	require.NoError(t, err)

	cred := CredentialFromTLS(state, false)
	path, ok := cred.(types.X509CertPath)
	require.True(t, ok)
	assert.Equal(t, "device-42", path.Leaf().Subject.CommonName)
	assert.Contains(t, path.DistinguishedName(), "CN=device-42")
}

func TestTLS_RPKCredential(t *testing.T) {
	pki := newTestPKI(t)

	serverSec := &securityif.Context{Certificate: pki.server, RawPublicKey: true}
	serverCfg, err := TLSConfig(serverSec, types.RoleServer)
	require.NoError(t, err)

	clientCfg, err := TLSConfig(&securityif.Context{
		Certificate:       pki.client,
		RawPublicKey:      true,
		TrustedPublicKeys: [][]byte{pki.server.Leaf.RawSubjectPublicKeyInfo},
	}, types.RoleClient)
	require.NoError(t, err)

	state, err := handshake(t, serverCfg, clientCfg)
	require.NoError(t, err)

	cred := CredentialFromTLS(state, true)
	rpk, ok := cred.(types.RPKCredential)
	require.True(t, ok)
	assert.Equal(t, pki.client.Leaf.RawSubjectPublicKeyInfo, rpk.PublicKey)
}

func TestTLS_RPKUntrustedServerKey(t *testing.T) {
	pki := newTestPKI(t)

	serverCfg, err := TLSConfig(&securityif.Context{Certificate: pki.server, RawPublicKey: true}, types.RoleServer)
	require.NoError(t, err)

	// 客户端只信任自己的公钥
	clientCfg, err := TLSConfig(&securityif.Context{
		Certificate:       pki.client,
		RawPublicKey:      true,
		TrustedPublicKeys: [][]byte{pki.client.Leaf.RawSubjectPublicKeyInfo},
	}, types.RoleClient)
	require.NoError(t, err)

	_, err = handshake(t, serverCfg, clientCfg)
	assert.Error(t, err)
}

func TestCredentialFromTLS_NoPeerCertificate(t *testing.T) {
	assert.Nil(t, CredentialFromTLS(tls.ConnectionState{}, false))
}

// ============================================================================
// DTLS 配置
// ============================================================================

func TestDTLSConfig_PSK(t *testing.T) {
	client, err := DTLSConfig(&securityif.Context{PSKIdentity: "sensor-17", PSKKey: []byte{0xab}}, types.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, []byte("sensor-17"), client.PSKIdentityHint)
	key, err := client.PSK(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab}, key)
	assert.Equal(t, pskCipherSuites, client.CipherSuites)

	store := NewInMemoryPSKStore()
	require.NoError(t, store.Add("sensor-17", []byte{0xcd}))
	server, err := DTLSConfig(&securityif.Context{PSKStore: store}, types.RoleServer)
	require.NoError(t, err)
	key, err = server.PSK([]byte("sensor-17"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xcd}, key)
	_, err = server.PSK([]byte("other"))
	assert.ErrorIs(t, err, ErrUnknownPSKIdentity)

	// 服务端只有单个标识
	single, err := DTLSConfig(&securityif.Context{PSKIdentity: "gw", PSKKey: []byte{1}}, types.RoleServer)
	require.NoError(t, err)
	_, err = single.PSK([]byte("gw"))
	assert.NoError(t, err)

	t.Log("✅ DTLS PSK 配置测试通过")
}

func TestDTLSConfig_Errors(t *testing.T) {
	pki := newTestPKI(t)

	_, err := DTLSConfig(nil, types.RoleServer)
	assert.ErrorIs(t, err, ErrNoSecurityContext)

	_, err = DTLSConfig(&securityif.Context{PSKIdentity: "a", PSKKey: []byte{1}, Certificate: pki.server}, types.RoleServer)
	assert.ErrorIs(t, err, ErrPSKAndCertificate)

	_, err = DTLSConfig(&securityif.Context{PSKStore: NewInMemoryPSKStore()}, types.RoleClient)
	assert.ErrorIs(t, err, ErrNoPSKIdentity)

	_, err = DTLSConfig(&securityif.Context{}, types.RoleServer)
	assert.ErrorIs(t, err, ErrNoCertificate)

	_, err = DTLSConfig(&securityif.Context{Certificate: pki.server}, types.RoleServer)
	assert.ErrorIs(t, err, ErrNoTrustAnchors)
}

func TestDTLSConfig_Certificate(t *testing.T) {
	pki := newTestPKI(t)

	cfg, err := DTLSConfig(&securityif.Context{
		Certificate:         pki.server,
		TrustedCertificates: []*x509.Certificate{pki.ca.Leaf},
	}, types.RoleServer)
	require.NoError(t, err)
	assert.Equal(t, dtls.RequireAndVerifyClientCert, cfg.ClientAuth)
	assert.Len(t, cfg.Certificates, 1)

	cfg, err = DTLSConfig(&securityif.Context{
		Certificate:       pki.client,
		RawPublicKey:      true,
		TrustedPublicKeys: [][]byte{pki.server.Leaf.RawSubjectPublicKeyInfo},
	}, types.RoleClient)
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.NoError(t, cfg.VerifyPeerCertificate([][]byte{pki.server.Leaf.Raw}, nil))
	assert.ErrorIs(t, cfg.VerifyPeerCertificate([][]byte{pki.client.Leaf.Raw}, nil), ErrUntrustedPublicKey)
	assert.ErrorIs(t, cfg.VerifyPeerCertificate(nil, nil), ErrNoPeerCertificate)
}

func TestCredentialFromDTLS(t *testing.T) {
	pki := newTestPKI(t)
	psk := &securityif.Context{PSKIdentity: "own-id", PSKKey: []byte{1}}

	cred, err := CredentialFromDTLS(dtls.State{IdentityHint: []byte("sensor-17")}, psk, types.RoleServer)
	require.NoError(t, err)
	assert.Equal(t, types.PSKCredential{Identity: "sensor-17"}, cred)

	cred, err = CredentialFromDTLS(dtls.State{}, psk, types.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, types.PSKCredential{Identity: "own-id"}, cred)

	certSec := &securityif.Context{Certificate: pki.server}
	cred, err = CredentialFromDTLS(dtls.State{PeerCertificates: [][]byte{pki.client.Leaf.Raw}}, certSec, types.RoleServer)
	require.NoError(t, err)
	path, ok := cred.(types.X509CertPath)
	require.True(t, ok)
	assert.Equal(t, "device-42", path.Leaf().Subject.CommonName)

	rpkSec := &securityif.Context{Certificate: pki.server, RawPublicKey: true}
	cred, err = CredentialFromDTLS(dtls.State{PeerCertificates: [][]byte{pki.client.Leaf.Raw}}, rpkSec, types.RoleServer)
	require.NoError(t, err)
	assert.Equal(t, types.RPKCredential{PublicKey: pki.client.Leaf.RawSubjectPublicKeyInfo}, cred)

	cred, err = CredentialFromDTLS(dtls.State{}, certSec, types.RoleServer)
	require.NoError(t, err)
	assert.Nil(t, cred)

	_, err = CredentialFromDTLS(dtls.State{PeerCertificates: [][]byte{{0x01}}}, certSec, types.RoleServer)
	assert.Error(t, err)
}

// ============================================================================
// 从配置构建
// ============================================================================

func writePEM(t *testing.T, dir, name, blockType string, der []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der}), 0o600))
	return path
}

func TestContextFromConfig(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		sec, err := ContextFromConfig(config.DefaultSecurityConfig())
		require.NoError(t, err)
		assert.Nil(t, sec)
	})

	t.Run("PSK", func(t *testing.T) {
		sec, err := ContextFromConfig(config.SecurityConfig{
			PSKIdentity: "sensor-17",
			PSKKey:      "0a0b",
			PSKKeys:     map[string]string{"dev-1": "01", "dev-2": "02"},
		})
		require.NoError(t, err)
		assert.Equal(t, []byte{0x0a, 0x0b}, sec.PSKKey)
		key, err := sec.PSKStore.Key("dev-2")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x02}, key)
		assert.Equal(t, "psk", sec.Mode())
	})

	t.Run("Certificate", func(t *testing.T) {
		pki := newTestPKI(t)
		dir := t.TempDir()

		keyDER, err := x509.MarshalPKCS8PrivateKey(pki.client.PrivateKey)
		require.NoError(t, err)

		certFile := writePEM(t, dir, "client.pem", "CERTIFICATE", pki.client.Leaf.Raw)
		keyFile := writePEM(t, dir, "client.key", "PRIVATE KEY", keyDER)
		caFile := writePEM(t, dir, "ca.pem", "CERTIFICATE", pki.ca.Leaf.Raw)
		pubFile := writePEM(t, dir, "server.pub", "PUBLIC KEY", pki.server.Leaf.RawSubjectPublicKeyInfo)

		sec, err := ContextFromConfig(config.SecurityConfig{
			CertFile:        certFile,
			KeyFile:         keyFile,
			CAFiles:         []string{caFile},
			TrustedKeyFiles: []string{pubFile, caFile},
			ServerName:      "lwm2m.test",
		})
		require.NoError(t, err)
		require.NotNil(t, sec.Certificate)
		assert.Equal(t, "device-42", sec.Certificate.Leaf.Subject.CommonName)
		require.Len(t, sec.TrustedCertificates, 1)
		require.Len(t, sec.TrustedPublicKeys, 2)
		assert.Equal(t, pki.server.Leaf.RawSubjectPublicKeyInfo, sec.TrustedPublicKeys[0])
		assert.Equal(t, "x509", sec.Mode())
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := ContextFromConfig(config.SecurityConfig{PSKIdentity: "a", PSKKey: "zz"})
		assert.ErrorIs(t, err, config.ErrInvalidSecurity)

		_, err = ContextFromConfig(config.SecurityConfig{CertFile: "/nonexistent.pem", KeyFile: "/nonexistent.key"})
		assert.Error(t, err)
	})
}

func TestLoadCertificates_NoPEM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pem")
	require.NoError(t, os.WriteFile(path, []byte(hex.EncodeToString([]byte("nope"))), 0o600))

	_, err := LoadCertificates(path)
	assert.Error(t, err)
	_, err = LoadPublicKeys(path)
	assert.Error(t, err)
}
