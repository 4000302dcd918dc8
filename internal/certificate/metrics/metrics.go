package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the certificate domain.
type Metrics struct {
	Issued           prometheus.Counter
	Retired          prometheus.Counter
	Revealed         prometheus.Counter
	ProofRejections  prometheus.Counter
	VerifierDuration prometheus.Histogram
}

// New creates and registers all certificate metrics.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		Retired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_certificates_retired_total",
			Help: "Total number of certificates retired",
		}),
		Revealed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_certificates_revealed_total",
			Help: "Total number of certificates revealed through the decryption protocol",
		}),
		ProofRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_certificate_proof_rejections_total",
			Help: "Total number of proofs rejected by the external verifier",
		}),
		VerifierDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veilcredit_verifier_call_duration_seconds",
			Help:    "Latency of external proof verifier calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveVerifier records one verifier round trip.
func (m *Metrics) ObserveVerifier(start time.Time) {
	m.VerifierDuration.Observe(time.Since(start).Seconds())
}
