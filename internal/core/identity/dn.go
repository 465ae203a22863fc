package identity

import (
	"crypto/x509"
	"regexp"
)

// cnPattern 匹配第一个 "CN=" 属性，到逗号或结尾为止（区分大小写）
var cnPattern = regexp.MustCompile(`CN=(.*?)(,|$)`)

// ExtractCommonName 从可分辨名称字符串中提取 CN
//
//	ExtractCommonName("CN=device-42,O=Acme") // "device-42", true
//	ExtractCommonName("CN=node-1, O=Org")    // "node-1", true
//	ExtractCommonName("O=Acme")              // "", false
//
// CN 为空视为未找到。
func ExtractCommonName(dn string) (string, bool) {
	m := cnPattern.FindStringSubmatch(dn)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// commonNameOf 优先读取叶证书的结构化主体，没有时回退到字符串解析
func commonNameOf(leaf *x509.Certificate, dn string) (string, bool) {
	if leaf != nil && leaf.Subject.CommonName != "" {
		return leaf.Subject.CommonName, true
	}
	return ExtractCommonName(dn)
}
