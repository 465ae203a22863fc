// Package leshan 提供 LwM2M 服务端与客户端实例
//
// 每个实例在构建时完成端点引导：按配置绑定非安全端点与安全端点（至少一个），
// Start 之后每条入站交互先解析出对端身份（PeerIdentity），再交给 Handler。
//
// # 快速开始
//
//	srv, err := leshan.NewServer(
//	    leshan.WithSecurityContext(sec),
//	    leshan.WithHandler(handler),
//	)
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// 客户端需要端点名，对象集合未指定时使用默认集合：
//
//	cli, err := leshan.NewClient("urn:dev:os:device-42",
//	    leshan.WithCarrier(types.CarrierTCP),
//	)
//
// # 载体与默认端口
//
//	udp:  coap 5683 / coaps (DTLS) 5684
//	tcp:  coap+tcp 5683 / coaps+tcp (TLS) 5689
//	quic: coap 5683 / coaps+quic 5684
//
// 客户端默认绑定通配地址与临时端口。
package leshan
