package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated   prometheus.Counter
	SignIns        *prometheus.CounterVec
	RecordsWritten *prometheus.CounterVec
	PostalLookups  *prometheus.HistogramVec
	PostalCache    *prometheus.CounterVec
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cadastro_users_created_total",
			Help: "Total number of accounts created",
		}),
		SignIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_sign_ins_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
		RecordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_records_written_total",
			Help: "Document writes by collection and operation",
		}, []string{"collection", "op"}),
		PostalLookups: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cadastro_postal_lookup_duration_seconds",
			Help:    "Latency of CEP lookups against the upstream service",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		PostalCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_postal_cache_total",
			Help: "CEP cache lookups by result",
		}, []string{"result"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementSignIn(outcome string) {
	m.SignIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRecordWrite(collection, op string) {
	m.RecordsWritten.WithLabelValues(collection, op).Inc()
}

func (m *Metrics) ObservePostalLookup(outcome string, elapsed time.Duration) {
	m.PostalLookups.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementPostalCache(result string) {
	m.PostalCache.WithLabelValues(result).Inc()
}
