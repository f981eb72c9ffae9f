package backup

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// Metrics holds the backup collectors. A nil *Metrics records nothing.
type Metrics struct {
	duration      *prometheus.HistogramVec
	operations    *prometheus.CounterVec
	lastSize      prometheus.Gauge
	lastSuccess   prometheus.Gauge
	importedItems *prometheus.CounterVec
}

// NewMetrics registers the backup collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eduprompt_backup_duration_seconds",
			Help:    "Time to create a catalog snapshot",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind", "status"}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eduprompt_backup_operations_total",
			Help: "Backup operations by type and status",
		}, []string{"operation", "status"}),
		lastSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "eduprompt_backup_last_size_bytes",
			Help: "Size of the most recent snapshot blob",
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "eduprompt_backup_last_success_timestamp_seconds",
			Help: "Unix time of the most recent successful snapshot",
		}),
		importedItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eduprompt_backup_imported_items_total",
			Help: "Imported catalog items by collection and outcome",
		}, []string{"collection", "outcome"}),
	}
}

func (m *Metrics) observeBackup(kind domain.SnapshotKind, start time.Time, sizeBytes int64, err error) {
	if m == nil {
		return
	}
	status := statusLabel(err)
	m.duration.WithLabelValues(string(kind), status).Observe(time.Since(start).Seconds())
	m.operations.WithLabelValues("create", status).Inc()
	if err == nil {
		m.lastSize.Set(float64(sizeBytes))
		m.lastSuccess.SetToCurrentTime()
	}
}

func (m *Metrics) operation(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, statusLabel(err)).Inc()
}

func (m *Metrics) imported(c domain.Collection, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.importedItems.WithLabelValues(string(c), outcome).Add(float64(n))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
