// Package metrics 本地计数器（仅在 serve 模式通过 /metrics 暴露）
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 结果标签
const (
	ResultIssued = "issued"
	ResultFailed = "failed"
)

var (
	// unlocksTotal 按伪装统计的解锁次数
	unlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertaja_unlocks_total",
		Help: "Total successful unlocks by disguise",
	}, []string{"disguise"})

	// sosTotal 按结果统计的 SOS 次数（started / cancelled / dispatched）
	sosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertaja_sos_total",
		Help: "Total SOS countdowns by outcome",
	}, []string{"outcome"})

	// dispatchAttempts 按渠道和结果统计的分发尝试
	dispatchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertaja_dispatch_attempts_total",
		Help: "Total dispatch intent attempts by channel and result",
	}, []string{"channel", "result"})

	// locationResolved 位置补充成功与否
	locationResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertaja_location_resolutions_total",
		Help: "Total location resolutions attached to SOS messages",
	}, []string{"resolved"})
)

// RecordUnlock 记录一次解锁
func RecordUnlock(disguise string) {
	unlocksTotal.WithLabelValues(disguise).Inc()
}

// RecordSOS 记录一次 SOS 状态结果
func RecordSOS(outcome string) {
	sosTotal.WithLabelValues(outcome).Inc()
}

// RecordDispatch 记录一次分发尝试
func RecordDispatch(channel string, issued bool) {
	result := ResultFailed
	if issued {
		result = ResultIssued
	}
	dispatchAttempts.WithLabelValues(channel, result).Inc()
}

// RecordLocation 记录 SOS 消息是否带位置
func RecordLocation(resolved bool) {
	label := "false"
	if resolved {
		label = "true"
	}
	locationResolved.WithLabelValues(label).Inc()
}

// Handler /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
