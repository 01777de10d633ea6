package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DispatchTotal 分组派发次数（Counter）
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigcollect_dispatch_total",
			Help: "签名请求派发到交互器的次数",
		},
		[]string{"kind", "mode"}, // mode: poly, mono
	)

	// NeglectedFactorsTotal 被忽略的因子源数量（Counter）
	NeglectedFactorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigcollect_neglected_factors_total",
			Help: "被忽略的因子源数量",
		},
		[]string{"reason"},
	)

	// TransactionsTotal 载荷最终结果（Counter）
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigcollect_transactions_total",
			Help: "载荷最终结果数量",
		},
		[]string{"result"}, // result: successful, failed
	)

	// RunDuration 单次收集耗时（Histogram，秒）
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sigcollect_run_duration_seconds",
			Help:    "单次签名收集耗时（秒）",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(DispatchTotal)
	prometheus.MustRegister(NeglectedFactorsTotal)
	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(RunDuration)
}
