package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus counters for the application.
type Metrics struct {
	NGOsRegistered  prometheus.Counter
	NGOsVerified    prometheus.Counter
	NGOsSuspended   prometheus.Counter
	Donations       prometheus.Counter
	DonatedAmount   prometheus.Counter
	FailedDonations prometheus.Counter
	VerifierChanges *prometheus.CounterVec
}

// New creates metrics registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates metrics registered on the given registerer. Tests pass a
// fresh prometheus.NewRegistry to avoid duplicate registration.
func NewWith(r prometheus.Registerer) *Metrics {
	f := promauto.With(r)
	return &Metrics{
		NGOsRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "ngo_ledger_ngos_registered_total",
			Help: "Total number of organizations registered",
		}),
		NGOsVerified: f.NewCounter(prometheus.CounterOpts{
			Name: "ngo_ledger_ngos_verified_total",
			Help: "Total number of organizations verified",
		}),
		NGOsSuspended: f.NewCounter(prometheus.CounterOpts{
			Name: "ngo_ledger_ngos_suspended_total",
			Help: "Total number of organizations suspended",
		}),
		Donations: f.NewCounter(prometheus.CounterOpts{
			Name: "ngo_ledger_donations_total",
			Help: "Total number of committed donations",
		}),
		DonatedAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "ngo_ledger_donated_amount_total",
			Help: "Total value moved through committed donations",
		}),
		FailedDonations: f.NewCounter(prometheus.CounterOpts{
			Name: "ngo_ledger_failed_donations_total",
			Help: "Total number of rejected or rolled-back donations",
		}),
		VerifierChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ngo_ledger_verifier_changes_total",
			Help: "Verifier set mutations by operation",
		}, []string{"op"}),
	}
}
