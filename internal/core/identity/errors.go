package identity

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/artikcloud/leshan/pkg/types"
)

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrInvalidCredential 凭证内容无效（如 PSK 标识为空）
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrMissingCommonName 证书主体没有可解析的 CN
	ErrMissingCommonName = errors.New("missing common name")

	// ErrUnsupportedCredentialType 无法识别的凭证类型
	ErrUnsupportedCredentialType = errors.New("unsupported credential type")

	// ErrMissingPeerAddress 交互没有对端地址
	//
	// 属于传输层违反约定，不包装为 ResolutionError。
	ErrMissingPeerAddress = errors.New("exchange has no peer address")
)

// ResolutionError 单次交互的身份解析失败
//
// Kind 是 ErrInvalidCredential、ErrMissingCommonName、
// ErrUnsupportedCredentialType 之一，可用 errors.Is 判断。
type ResolutionError struct {
	Kind           error
	Peer           netip.AddrPort
	CredentialType types.CredentialType
	Detail         string
}

// Error 实现 error 接口
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("identity: %v from %s", e.Kind, e.Peer)
	if e.CredentialType != "" {
		msg += fmt.Sprintf(" (credential=%s)", e.CredentialType)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap 返回错误类别
func (e *ResolutionError) Unwrap() error {
	return e.Kind
}

// Reason 返回错误类别的短名称，用于指标标签
func (e *ResolutionError) Reason() string {
	return Reason(e.Kind)
}

// Reason 返回错误类别的短名称
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrMissingCommonName):
		return "missing_common_name"
	case errors.Is(err, ErrUnsupportedCredentialType):
		return "unsupported_credential_type"
	case errors.Is(err, ErrMissingPeerAddress):
		return "missing_peer_address"
	default:
		return "unknown"
	}
}

func resolutionError(kind error, peer netip.AddrPort, ct types.CredentialType, detail string) *ResolutionError {
	return &ResolutionError{
		Kind:           kind,
		Peer:           peer,
		CredentialType: ct,
		Detail:         detail,
	}
}
