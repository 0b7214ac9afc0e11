package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EntriesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snortalert_entries_parsed_total",
		Help: "已解析的告警条目总数",
	})

	EntriesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snortalert_entries_rejected_total",
		Help: "因内容为空被拒绝的条目总数",
	})

	FieldsUnmatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snortalert_fields_unmatched_total",
			Help: "未匹配而使用默认值的字段次数",
		},
		[]string{"field"},
	)

	RecordsBySeverity = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snortalert_records_total",
			Help: "按严重程度统计的告警记录数",
		},
		[]string{"severity"},
	)

	SinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snortalert_sink_errors_total",
			Help: "输出目标写入失败次数",
		},
		[]string{"sink"},
	)

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snortalert_batch_duration_seconds",
		Help:    "单次批量解析耗时",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

// Handler 返回挂载了 /metrics 的路由
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve 在addr上暴露 /metrics，阻塞直到监听失败
func Serve(addr string) error {
	if err := http.ListenAndServe(addr, Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
