package security

import (
	"crypto/tls"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// testPKI 测试用 CA 与由其签发的服务端、客户端证书
type testPKI struct {
	ca     *tls.Certificate
	server *tls.Certificate
	client *tls.Certificate
}

func newTestPKI(t *testing.T) *testPKI {
	t.Helper()

	ca, err := GenerateCertificate(CertificateTemplate{CommonName: "Test Root", IsCA: true}, nil)
	require.NoError(t, err)

	server, err := GenerateCertificate(CertificateTemplate{
		CommonName:  "lwm2m-server",
		DNSNames:    []string{"lwm2m.test"},
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1")},
	}, ca)
	require.NoError(t, err)

	client, err := GenerateCertificate(CertificateTemplate{
		CommonName:   "device-42",
		Organization: "Acme",
	}, ca)
	require.NoError(t, err)

	return &testPKI{ca: ca, server: server, client: client}
}
