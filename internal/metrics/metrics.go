// Package metrics exposes driver counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MasandeM/xbee/apiframe"
	"github.com/MasandeM/xbee/internal/rxscan"
)

// NewRegistry creates a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// DriverMetrics counts traffic through a device. It satisfies xbee.Observer.
type DriverMetrics struct {
	BytesReadTotal     prometheus.Counter
	FramesDecodedTotal *prometheus.CounterVec // labels: type
	FramesRejected     *prometheus.CounterVec // labels: reason=checksum|content|length|other
	FramesSentTotal    *prometheus.CounterVec // labels: type
	TxStatusTotal      *prometheus.CounterVec // labels: status
	LastRSSI           prometheus.Gauge       // -dBm of the last received packet
}

func NewDriverMetrics(reg prometheus.Registerer) *DriverMetrics {
	m := &DriverMetrics{
		BytesReadTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xbee_bytes_read_total",
			Help: "Total bytes read from the module.",
		}),
		FramesDecodedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xbee_frames_decoded_total",
			Help: "API frames decoded by frame type.",
		}, []string{"type"}),
		FramesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xbee_frames_rejected_total",
			Help: "Candidate frames skipped while resynchronizing.",
		}, []string{"reason"}),
		FramesSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xbee_frames_sent_total",
			Help: "API frames written to the module by frame type.",
		}, []string{"type"}),
		TxStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xbee_tx_status_total",
			Help: "Transmit status reports by delivery status.",
		}, []string{"status"}),
		LastRSSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xbee_last_rssi_dbm",
			Help: "Signal strength of the last received packet in -dBm.",
		}),
	}
	reg.MustRegister(m.BytesReadTotal, m.FramesDecodedTotal, m.FramesRejected, m.FramesSentTotal, m.TxStatusTotal, m.LastRSSI)
	return m
}

func (m *DriverMetrics) BytesRead(n int) { m.BytesReadTotal.Add(float64(n)) }

func (m *DriverMetrics) FrameDecoded(frameType byte) {
	m.FramesDecodedTotal.WithLabelValues(apiframe.TypeName(frameType)).Inc()
}

func (m *DriverMetrics) FrameRejected(err error) {
	m.FramesRejected.WithLabelValues(rxscan.Reason(err)).Inc()
}

func (m *DriverMetrics) FrameSent(frameType byte) {
	m.FramesSentTotal.WithLabelValues(apiframe.TypeName(frameType)).Inc()
}

// Observe records the parts of a decoded frame that have their own series.
func (m *DriverMetrics) Observe(c apiframe.Content) {
	switch f := c.(type) {
	case apiframe.TxStatusReport:
		m.TxStatusTotal.WithLabelValues(f.Status.String()).Inc()
	case apiframe.RxPacket:
		m.LastRSSI.Set(float64(f.RSSI))
	case apiframe.RxIOSample:
		m.LastRSSI.Set(float64(f.RSSI))
	}
}
