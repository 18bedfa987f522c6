package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// Metrics は操作の件数と所要時間を記録します。
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics は専用のレジストリにメトリクスを登録します。
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "image_studio",
			Name:      "operations_total",
			Help:      "Generation and edit operations by mode and outcome.",
		}, []string{"mode", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "image_studio",
			Name:      "operation_duration_seconds",
			Help:      "Latency of remote generation and edit operations.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"mode"}),
	}
	m.registry.MustRegister(m.operations, m.duration)
	return m
}

// Observe は 1 回の操作結果を記録します。
func (m *Metrics) Observe(mode, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Registry は /metrics で公開するレジストリです。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// outcomeLabel はエラーを operations_total の outcome ラベルに分類します。
func outcomeLabel(err error) string {
	var remote *domain.RemoteOperationError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNoImageReturned):
		return "no_image"
	case errors.Is(err, domain.ErrInvalidFile), errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.As(err, &remote):
		return "remote_error"
	default:
		return "error"
	}
}
