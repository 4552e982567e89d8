/*
 * @module service/anomaly/metrics
 * @description 检测引擎指标采集，暴露检测运行计数、耗时与异常行计数
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 检测运行结束 -> 指标更新 -> /metrics 拉取
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs detector.go, main.go
 */

package anomaly

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	detectionRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dataquality_detection_runs_total",
		Help: "异常检测运行总次数",
	})

	detectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dataquality_detection_duration_seconds",
		Help:    "单次异常检测耗时分布",
		Buckets: prometheus.DefBuckets,
	})

	anomalyRowsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dataquality_anomaly_rows_total",
		Help: "按类别累计检出的异常行数",
	}, []string{"category"})
)
