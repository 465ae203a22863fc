package config

import (
	"encoding/hex"
	"fmt"
)

// SecurityConfig 安全端点的密钥材料（文件形式）
//
// 运行时由 internal/core/security.ContextFromConfig 转换为安全上下文：
//   - PSK: 客户端用 PSKIdentity + PSKKey，服务端用 PSKKeys
//   - X.509: CertFile + KeyFile + CAFiles
//   - RPK: CertFile + KeyFile + RawPublicKey，可选 TrustedKeyFiles
type SecurityConfig struct {
	// PSKIdentity 客户端 PSK 标识
	PSKIdentity string `json:"psk_identity,omitempty" yaml:"psk_identity,omitempty"`

	// PSKKey 客户端 PSK 密钥（十六进制）
	PSKKey string `json:"psk_key,omitempty" yaml:"psk_key,omitempty"`

	// PSKKeys 服务端 PSK 表：标识 -> 十六进制密钥
	PSKKeys map[string]string `json:"psk_keys,omitempty" yaml:"psk_keys,omitempty"`

	// CertFile 本端证书 PEM 文件
	CertFile string `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`

	// KeyFile 本端私钥 PEM 文件
	KeyFile string `json:"key_file,omitempty" yaml:"key_file,omitempty"`

	// CAFiles 信任的 CA 证书 PEM 文件
	CAFiles []string `json:"ca_files,omitempty" yaml:"ca_files,omitempty"`

	// TrustedKeyFiles 固定的对端公钥 PEM 文件（RPK）
	TrustedKeyFiles []string `json:"trusted_key_files,omitempty" yaml:"trusted_key_files,omitempty"`

	// RawPublicKey 证书仅作为公钥载体
	RawPublicKey bool `json:"raw_public_key,omitempty" yaml:"raw_public_key,omitempty"`

	// ServerName 客户端握手使用的服务器名
	ServerName string `json:"server_name,omitempty" yaml:"server_name,omitempty"`
}

// DefaultSecurityConfig 返回空安全配置
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{}
}

// IsEmpty 没有任何密钥材料
func (c SecurityConfig) IsEmpty() bool {
	return c.PSKIdentity == "" && c.PSKKey == "" && len(c.PSKKeys) == 0 &&
		c.CertFile == "" && c.KeyFile == ""
}

// Validate 验证安全配置
func (c SecurityConfig) Validate() error {
	if (c.PSKIdentity == "") != (c.PSKKey == "") {
		return fmt.Errorf("%w: psk_identity and psk_key must be set together", ErrInvalidSecurity)
	}
	if c.PSKKey != "" {
		if _, err := hex.DecodeString(c.PSKKey); err != nil {
			return fmt.Errorf("%w: psk_key is not hex: %v", ErrInvalidSecurity, err)
		}
	}
	for id, key := range c.PSKKeys {
		if id == "" {
			return fmt.Errorf("%w: empty identity in psk_keys", ErrInvalidSecurity)
		}
		if _, err := hex.DecodeString(key); err != nil {
			return fmt.Errorf("%w: psk_keys[%s] is not hex: %v", ErrInvalidSecurity, id, err)
		}
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("%w: cert_file and key_file must be set together", ErrInvalidSecurity)
	}
	if c.RawPublicKey && c.CertFile == "" {
		return fmt.Errorf("%w: raw_public_key requires cert_file and key_file", ErrInvalidSecurity)
	}
	return nil
}

// WithPSK 设置客户端 PSK
func (c SecurityConfig) WithPSK(identity, hexKey string) SecurityConfig {
	c.PSKIdentity = identity
	c.PSKKey = hexKey
	return c
}

// WithCertificate 设置本端证书与私钥文件
func (c SecurityConfig) WithCertificate(certFile, keyFile string) SecurityConfig {
	c.CertFile = certFile
	c.KeyFile = keyFile
	return c
}

// WithCAFiles 设置信任的 CA 文件
func (c SecurityConfig) WithCAFiles(files ...string) SecurityConfig {
	c.CAFiles = append([]string(nil), files...)
	return c
}
