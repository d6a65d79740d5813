package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated     prometheus.Counter
	SignIns          prometheus.Counter
	AuthFailures     prometheus.Counter
	PairingInitiated prometheus.Counter
	PairingCompleted prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics on the given registerer. Tests pass a
// fresh registry to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_users_created_total",
			Help: "Total number of users created in the system",
		}),
		SignIns: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_sign_ins_total",
			Help: "Total number of successful Google sign-ins",
		}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_auth_failures_total",
			Help: "Total number of rejected credentials (ID tokens, session tokens, bearer tokens)",
		}),
		PairingInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_extension_pairing_initiated_total",
			Help: "Total number of extension pairing sessions created",
		}),
		PairingCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_extension_pairing_completed_total",
			Help: "Total number of extension pairing sessions redeemed",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
