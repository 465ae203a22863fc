// Package session 管理面向会话载体上的对端会话
//
// DTLS、TCP、TLS、QUIC 连接器在握手完成后把会话交给 Table：
//   - 每个会话一个读协程，读到的字节作为一条入站消息投递
//   - 回复与主动发送按对端地址查找会话
//   - 会话数量受 MaxActive 限制，超过时拒绝新会话
//
// 每个会话的凭证在握手完成时确定，之后不变。
package session
