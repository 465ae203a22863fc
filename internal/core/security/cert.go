package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// ============================================================================
//                              证书加载
// ============================================================================

// LoadCertificate 从 PEM 文件加载证书与私钥
func LoadCertificate(certFile, keyFile string) (*tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("读取证书文件失败: %w", err)
	}

	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("读取私钥文件失败: %w", err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("解析证书和私钥失败: %w", err)
	}

	if len(cert.Certificate) > 0 {
		cert.Leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("解析 Leaf 证书失败: %w", err)
		}
	}

	return &cert, nil
}

// LoadCertificates 从 PEM 文件加载所有 CERTIFICATE 块
func LoadCertificates(files ...string) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("读取 CA 文件失败: %w", err)
		}
		parsed, err := parsePEMCertificates(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		certs = append(certs, parsed...)
	}
	return certs, nil
}

func parsePEMCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("解析证书失败: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("没有找到 PEM 证书")
	}
	return certs, nil
}

// LoadPublicKeys 从 PEM 文件加载公钥（PUBLIC KEY 块或证书中的公钥）
//
// 返回 PKIX SubjectPublicKeyInfo DER。
func LoadPublicKeys(files ...string) ([][]byte, error) {
	var keys [][]byte
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("读取公钥文件失败: %w", err)
		}
		found := false
		for {
			var block *pem.Block
			block, data = pem.Decode(data)
			if block == nil {
				break
			}
			switch block.Type {
			case "PUBLIC KEY":
				if _, err := x509.ParsePKIXPublicKey(block.Bytes); err != nil {
					return nil, fmt.Errorf("%s: 解析公钥失败: %w", file, err)
				}
				keys = append(keys, block.Bytes)
				found = true
			case "CERTIFICATE":
				cert, err := x509.ParseCertificate(block.Bytes)
				if err != nil {
					return nil, fmt.Errorf("%s: 解析证书失败: %w", file, err)
				}
				keys = append(keys, cert.RawSubjectPublicKeyInfo)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: 没有找到 PEM 公钥", file)
		}
	}
	return keys, nil
}

// ============================================================================
//                              证书生成
// ============================================================================

// CertificateTemplate 证书生成参数
type CertificateTemplate struct {
	// CommonName 主体 CN，X.509 模式下即对端身份
	CommonName string

	// Organization 主体组织
	Organization string

	// IPAddresses 主体备用名中的 IP
	IPAddresses []net.IP

	// DNSNames 主体备用名中的域名
	DNSNames []string

	// IsCA 是否为 CA 证书
	IsCA bool

	// Validity 有效期，0 表示一年
	Validity time.Duration
}

// GenerateCertificate 生成 ECDSA P-256 证书
//
// issuer 为 nil 时自签名，否则由 issuer 签发。
func GenerateCertificate(tmpl CertificateTemplate, issuer *tls.Certificate) (*tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成密钥失败: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, fmt.Errorf("生成序列号失败: %w", err)
	}

	validity := tmpl.Validity
	if validity == 0 {
		validity = 365 * 24 * time.Hour
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: tmpl.CommonName,
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IPAddresses:           tmpl.IPAddresses,
		DNSNames:              tmpl.DNSNames,
	}
	if tmpl.Organization != "" {
		template.Subject.Organization = []string{tmpl.Organization}
	}
	if tmpl.IsCA {
		template.IsCA = true
		template.KeyUsage |= x509.KeyUsageCertSign
	}

	parent := template
	var signer crypto.Signer = key
	if issuer != nil {
		if issuer.Leaf == nil {
			return nil, fmt.Errorf("签发证书缺少 Leaf")
		}
		s, ok := issuer.PrivateKey.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("不支持的签发私钥类型: %T", issuer.PrivateKey)
		}
		parent = issuer.Leaf
		signer = s
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, signer)
	if err != nil {
		return nil, fmt.Errorf("创建证书失败: %w", err)
	}

	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("解析证书失败: %w", err)
	}

	return &tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}
