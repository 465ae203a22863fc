package tcp

import (
	"context"
	"crypto/x509"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/artikcloud/leshan/internal/core/security"
	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
	"github.com/artikcloud/leshan/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var loopback = netip.MustParseAddrPort("127.0.0.1:0")

func testOptions() Options {
	return Options{ReadSize: 2048, HandshakeTimeout: 5 * time.Second}
}

// exchange 客户端发送 ping，服务端回复 pong，返回双方看到的凭证
func exchange(t *testing.T, server, client *Connector) (serverSaw, clientSaw types.Credential) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	clientDone := make(chan error, 1)
	defer func() {
		cancel()
		assert.NoError(t, <-serverDone)
		assert.NoError(t, <-clientDone)
	}()

	inbound := make(chan types.Credential, 1)
	go func() {
		serverDone <- server.Serve(ctx, func(in *types.Inbound) {
			inbound <- in.SenderCredential()
			_ = in.Reply([]byte("pong"))
		})
	}()

	replies := make(chan *types.Inbound, 1)
	go func() {
		clientDone <- client.Serve(ctx, func(in *types.Inbound) { replies <- in })
	}()

	serverAddr := server.LocalAddr().(*net.TCPAddr).AddrPort()
	require.NoError(t, client.Send(ctx, serverAddr, []byte("ping")))

	select {
	case serverSaw = <-inbound:
	case <-time.After(5 * time.Second):
		t.Fatal("服务端没有收到消息")
	}
	select {
	case in := <-replies:
		assert.Equal(t, []byte("pong"), in.Payload())
		clientSaw = in.SenderCredential()
	case <-time.After(5 * time.Second):
		t.Fatal("客户端没有收到回复")
	}
	return serverSaw, clientSaw
}

func TestConnector_Plaintext(t *testing.T) {
	server, err := NewPlaintext(types.RoleServer, loopback, testOptions())
	require.NoError(t, err)
	client, err := NewPlaintext(types.RoleClient, netip.MustParseAddrPort("0.0.0.0:0"), testOptions())
	require.NoError(t, err)

	serverSaw, clientSaw := exchange(t, server, client)
	assert.Nil(t, serverSaw)
	assert.Nil(t, clientSaw)
	assert.Equal(t, "tcp", server.Protocol())
	assert.False(t, server.Secure())

	t.Log("✅ CoAP/TCP 往返测试通过")
}

func TestConnector_TLS(t *testing.T) {
	ca, err := security.GenerateCertificate(security.CertificateTemplate{CommonName: "Test Root", IsCA: true}, nil)
	require.NoError(t, err)
	serverCert, err := security.GenerateCertificate(security.CertificateTemplate{
		CommonName:  "lwm2m-server",
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1")},
	}, ca)
	require.NoError(t, err)
	clientCert, err := security.GenerateCertificate(security.CertificateTemplate{CommonName: "device-42"}, ca)
	require.NoError(t, err)
	anchors := []*x509.Certificate{ca.Leaf}

	server, err := NewTLS(types.RoleServer, loopback,
		&securityif.Context{Certificate: serverCert, TrustedCertificates: anchors}, testOptions())
	require.NoError(t, err)
	client, err := NewTLS(types.RoleClient, loopback,
		&securityif.Context{Certificate: clientCert, TrustedCertificates: anchors, ServerName: "127.0.0.1"}, testOptions())
	require.NoError(t, err)

	serverSaw, clientSaw := exchange(t, server, client)

	path, ok := serverSaw.(types.X509CertPath)
	require.True(t, ok)
	assert.Equal(t, "device-42", path.Leaf().Subject.CommonName)

	path, ok = clientSaw.(types.X509CertPath)
	require.True(t, ok)
	assert.Equal(t, "lwm2m-server", path.Leaf().Subject.CommonName)
	assert.Equal(t, "tls", server.Protocol())
}

func TestConnector_TLSRejectsPSK(t *testing.T) {
	_, err := NewTLS(types.RoleServer, loopback, &securityif.Context{PSKIdentity: "a", PSKKey: []byte{1}}, testOptions())
	assert.ErrorIs(t, err, security.ErrPSKUnsupported)
}

func TestConnector_AddressInUse(t *testing.T) {
	first, err := NewPlaintext(types.RoleServer, loopback, testOptions())
	require.NoError(t, err)
	defer first.Close()

	_, err = NewPlaintext(types.RoleServer, first.LocalAddr().(*net.TCPAddr).AddrPort(), testOptions())
	assert.Error(t, err)
}

func TestConnector_CloseWithPendingHandshake(t *testing.T) {
	ca, err := security.GenerateCertificate(security.CertificateTemplate{CommonName: "Test Root", IsCA: true}, nil)
	require.NoError(t, err)
	server, err := NewTLS(types.RoleServer, loopback,
		&securityif.Context{Certificate: ca, TrustedCertificates: []*x509.Certificate{ca.Leaf}},
		Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, func(*types.Inbound) {}) }()

	// 建立 TCP 连接但不发起握手
	conn, err := net.Dial("tcp", server.LocalAddr().String())
	require.NoError(t, err)
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close 被未完成的握手阻塞")
	}
}
