// Package endpoint 实现双端点引导与入站交互服务
//
// # 引导
//
// Build 按 EndpointConfig 创建最多两个端点：
//
//	cfg := endpoint.Config{EndpointConfig: epCfg, Security: sec}
//	pair, err := endpoint.Build(cfg, factory, endpoint.BuildOptions{Role: types.RoleServer})
//
// 顺序固定：
//  1. 两个端点都被禁用时返回 ErrNoActiveEndpoint，不创建任何连接器
//  2. 客户端角色检查对象集合中的 Security 对象
//  3. 解析绑定地址（未设置时取通配地址与默认端口）
//  4. 创建非安全端点
//  5. 创建安全端点；失败时关闭已创建的非安全端点
//
// 任一步失败都不会留下已绑定的端点。
//
// # 服务
//
// Endpoint.Serve 运行连接器入站循环，每条交互先解析对端身份再交给 Handler。
// 身份解析失败的交互记录 Warn 日志与指标后丢弃。
package endpoint
