package storage

import (
	"time"

	"github.com/ipfs/go-cid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mycelium"

const casSubsystem = "cas"

// Metrics holds the Prometheus collectors shared by Instrumented stores.
type Metrics struct {
	// Operations counts CAS calls.
	// Labels: backend, op (put, get, has), result (ok, not_found, error, hit, miss)
	Operations *prometheus.CounterVec

	// Bytes counts payload bytes moved.
	// Labels: backend, op (put, get)
	Bytes *prometheus.CounterVec

	// Duration measures CAS call latency.
	// Labels: backend, op
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: casSubsystem,
			Name:      "operations_total",
			Help:      "CAS operations by backend, operation and result",
		}, []string{"backend", "op", "result"}),
		Bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: casSubsystem,
			Name:      "bytes_total",
			Help:      "Snapshot bytes written or read by backend and operation",
		}, []string{"backend", "op"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: casSubsystem,
			Name:      "operation_seconds",
			Help:      "CAS operation latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"backend", "op"}),
	}
}

// Instrument wraps cas so that every call is recorded under backend.
func (m *Metrics) Instrument(backend string, cas CAS) *Instrumented {
	return &Instrumented{CAS: cas, Backend: backend, metrics: m}
}

// Instrumented is a CAS decorator recording Prometheus metrics.
type Instrumented struct {
	CAS     CAS
	Backend string

	metrics *Metrics
}

var _ CAS = (*Instrumented)(nil)

func (i *Instrumented) Put(bytes []byte) (cid.Cid, error) {
	start := time.Now()
	id, err := i.CAS.Put(bytes)
	i.observe("put", start, resultOf(err))
	if err == nil {
		i.metrics.Bytes.WithLabelValues(i.Backend, "put").Add(float64(len(bytes)))
	}
	return id, err
}

func (i *Instrumented) Get(id cid.Cid) ([]byte, error) {
	start := time.Now()
	b, err := i.CAS.Get(id)
	i.observe("get", start, resultOf(err))
	if err == nil {
		i.metrics.Bytes.WithLabelValues(i.Backend, "get").Add(float64(len(b)))
	}
	return b, err
}

func (i *Instrumented) Has(id cid.Cid) bool {
	start := time.Now()
	ok := i.CAS.Has(id)
	result := "miss"
	if ok {
		result = "hit"
	}
	i.observe("has", start, result)
	return ok
}

func (i *Instrumented) observe(op string, start time.Time, result string) {
	i.metrics.Duration.WithLabelValues(i.Backend, op).Observe(time.Since(start).Seconds())
	i.metrics.Operations.WithLabelValues(i.Backend, op, result).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
