package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the certificate module.
// Tracks issuance volume, verification outcomes, and issuance latency
// (which includes PDF rendering, the slow path).
type Metrics struct {
	CertificatesIssued prometheus.Counter
	IssuanceFailures   prometheus.Counter
	VerificationHits   prometheus.Counter
	VerificationMisses prometheus.Counter
	IssueDuration      prometheus.Histogram
}

// New creates a Metrics instance with all certificate module metrics registered.
func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certgen_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		IssuanceFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certgen_issuance_failures_total",
			Help: "Total number of issuance requests that failed after validation",
		}),
		VerificationHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certgen_verification_hits_total",
			Help: "Total number of verification lookups that found a record",
		}),
		VerificationMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certgen_verification_misses_total",
			Help: "Total number of verification lookups for unknown or invalid identifiers",
		}),
		IssueDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certgen_issue_duration_seconds",
			Help:    "Duration of certificate issuance including PDF rendering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveIssue records the duration of an issuance. Call with time.Now()
// taken at the start of the operation.
func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}
