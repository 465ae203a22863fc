// Package types 定义 leshan 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - identity.go   - PeerIdentity 及其四种认证变体（Unsecured/PSK/RPK/X.509）
//   - credential.go - 传输层暴露的凭证描述（PSK 标识、RPK 公钥、X.500 主体、X.509 证书链）
//   - exchange.go   - Exchange 接口与 Inbound 入站消息
//   - address.go    - 对端地址规范化辅助函数
//   - objects.go    - Security(0)/Server(1)/Device(3) 对象实例与 ObjectSet
//   - enums.go      - Role, Carrier, SecurityMode, AuthKind
//   - errors.go     - 公共错误定义
//
// # 不可变性
//
// PeerIdentity 只能通过 New*Identity 构造函数创建，字段不导出，
// 所有字节切片在构造和读取时都会复制。
package types
