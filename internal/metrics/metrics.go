package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RegistrationsTotal counts successful account registrations.
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_registrations_total",
			Help: "Total number of accounts registered",
		},
	)

	// LoginsTotal counts login attempts by outcome (success, failure).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// BalanceUpdatesTotal counts applied balance adjustments.
	BalanceUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_balance_updates_total",
			Help: "Total number of balance adjustments applied",
		},
	)

	// AccountsTotal is the number of registered accounts, refreshed periodically from the store.
	AccountsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_total",
			Help: "Number of registered accounts",
		},
	)

	// AccountsBalanceSum is the sum of all account balances, refreshed periodically from the store.
	AccountsBalanceSum = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_balance_sum",
			Help: "Sum of all account balances (simulated money)",
		},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			RegistrationsTotal, LoginsTotal, BalanceUpdatesTotal,
			AccountsTotal, AccountsBalanceSum,
		)
	})
}

// RecordRequest records duration and count for an HTTP request. The route
// table is fixed and carries no ids in the path, so paths are recorded as-is.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncRegistrations increments the registrations counter (call after the record is created).
func IncRegistrations() {
	RegistrationsTotal.Inc()
}

// IncLogins increments the logins counter for the given outcome (success, failure).
func IncLogins(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}

// IncBalanceUpdates increments the balance updates counter (call after the adjustment is applied).
func IncBalanceUpdates() {
	BalanceUpdatesTotal.Inc()
}

// SetAccountStats sets the account gauges from a store snapshot.
func SetAccountStats(count int, balanceSum float64) {
	AccountsTotal.Set(float64(count))
	AccountsBalanceSum.Set(balanceSum)
}
