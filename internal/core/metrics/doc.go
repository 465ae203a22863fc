// Package metrics 提供端点与身份解析的 Prometheus 指标
//
// # 指标
//
//	lwm2m_endpoints_bound{scheme}                   已绑定的端点数
//	lwm2m_inbound_bytes_total{scheme}               入站字节数
//	lwm2m_identities_resolved_total{scheme,kind}    身份解析成功次数（按认证变体）
//	lwm2m_identity_failures_total{scheme,reason}    身份解析失败次数（按失败原因）
//	lwm2m_exchanges_dropped_total{scheme,reason}    被丢弃的交互（限流、超时）
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.New(reg)
//	m.ObserveIdentity("coaps", id)
//
// nil *Metrics 的所有方法都是空操作，未启用指标的组件无需判空。
package metrics
