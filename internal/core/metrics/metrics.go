package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/artikcloud/leshan/pkg/types"
)

const namespace = "lwm2m"

// 丢弃原因
const (
	DropRateLimited = "rate_limited"
	DropCanceled    = "canceled"
)

// Metrics 端点指标集合
type Metrics struct {
	endpointsBound     *prometheus.GaugeVec
	inboundBytes       *prometheus.CounterVec
	identitiesResolved *prometheus.CounterVec
	identityFailures   *prometheus.CounterVec
	exchangesDropped   *prometheus.CounterVec
}

// New 创建指标并注册到 reg
//
// reg 为 nil 时指标不注册，只在内存中计数。
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		endpointsBound: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "endpoints_bound",
			Help:      "Number of bound endpoints.",
		}, []string{"scheme"}),
		inboundBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_bytes_total",
			Help:      "Bytes received by endpoints.",
		}, []string{"scheme"}),
		identitiesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identities_resolved_total",
			Help:      "Peer identities resolved, by authentication kind.",
		}, []string{"scheme", "kind"}),
		identityFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_failures_total",
			Help:      "Exchanges rejected because the peer identity could not be resolved.",
		}, []string{"scheme", "reason"}),
		exchangesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_dropped_total",
			Help:      "Exchanges dropped before reaching the handler.",
		}, []string{"scheme", "reason"}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.endpointsBound,
		m.inboundBytes,
		m.identitiesResolved,
		m.identityFailures,
		m.exchangesDropped,
	}
}

// EndpointBound 记录端点绑定
func (m *Metrics) EndpointBound(scheme string) {
	if m == nil {
		return
	}
	m.endpointsBound.WithLabelValues(scheme).Inc()
}

// EndpointClosed 记录端点关闭
func (m *Metrics) EndpointClosed(scheme string) {
	if m == nil {
		return
	}
	m.endpointsBound.WithLabelValues(scheme).Dec()
}

// Inbound 记录一条入站消息
func (m *Metrics) Inbound(scheme string, size int) {
	if m == nil {
		return
	}
	m.inboundBytes.WithLabelValues(scheme).Add(float64(size))
}

// ObserveIdentity 记录一次身份解析成功
func (m *Metrics) ObserveIdentity(scheme string, id types.PeerIdentity) {
	if m == nil {
		return
	}
	m.identitiesResolved.WithLabelValues(scheme, id.Kind().String()).Inc()
}

// ObserveFailure 记录一次身份解析失败
func (m *Metrics) ObserveFailure(scheme, reason string) {
	if m == nil {
		return
	}
	m.identityFailures.WithLabelValues(scheme, reason).Inc()
}

// Dropped 记录一次被丢弃的交互
func (m *Metrics) Dropped(scheme, reason string) {
	if m == nil {
		return
	}
	m.exchangesDropped.WithLabelValues(scheme, reason).Inc()
}
