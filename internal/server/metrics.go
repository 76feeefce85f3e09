package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeongseonghan/bandmodem/internal/modem"
)

// Metrics holds the Prometheus collectors of one server.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	removedBand   *prometheus.CounterVec
	wsClients     prometheus.Gauge
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandmodem_requests_total",
				Help: "API requests by operation and result",
			},
			[]string{"op", "result"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bandmodem_stage_duration_seconds",
				Help:    "Time spent in each modem pipeline stage",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"stage"},
		),
		removedBand: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandmodem_removed_band_total",
				Help: "Receptions by index of the band detected as suppressed",
			},
			[]string{"band"},
		),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bandmodem_websocket_clients",
			Help: "Connected stage event subscribers",
		}),
	}
}

// Observer records stage durations and detected bands.
func (m *Metrics) Observer() modem.Observer {
	return func(e modem.Event) {
		m.stageDuration.WithLabelValues(string(e.Stage)).Observe(e.Elapsed.Seconds())
		if e.Stage == modem.StageDetect {
			if band, ok := e.Value.(int); ok {
				m.removedBand.WithLabelValues(strconv.Itoa(band)).Inc()
			}
		}
	}
}

func (m *Metrics) countRequest(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.requests.WithLabelValues(op, result).Inc()
}

func (m *Metrics) setClients(n int) {
	m.wsClients.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
