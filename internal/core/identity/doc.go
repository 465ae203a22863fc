// Package identity 把传输层暴露的对端凭证解析为 PeerIdentity
//
// # 解析规则
//
//   - 没有凭证：Unsecured
//   - PSK 凭证：标识为空时报 ErrInvalidCredential，否则 PreSharedKey
//   - RPK 凭证：RawPublicKey
//   - 携带可分辨名称的凭证（X.500 主体或 X.509 证书链）：提取 CN，
//     提取失败报 ErrMissingCommonName；附带证书链时一并保留
//   - 其他凭证：ErrUnsupportedCredentialType
//
// 解析是纯函数，不做 I/O，不缓存结果，可在任意数量的协程上并发调用。
//
// # 快速开始
//
//	r := identity.NewResolver()
//	id, err := r.Resolve(exchange)
//	if err != nil {
//	    var rerr *identity.ResolutionError
//	    if errors.As(err, &rerr) {
//	        // 拒绝本次交互
//	    }
//	}
package identity
