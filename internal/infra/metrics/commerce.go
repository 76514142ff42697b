package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_orders_total",
		Help: "Commerce operations by type and outcome.",
	}, []string{"operation", "status"})

	revenueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_revenue_total",
		Help: "Captured revenue by currency.",
	}, []string{"currency"})

	rollbackFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commerce_rollback_failures_total",
		Help: "Rollback attempts that themselves failed and need manual reconciliation.",
	})

	expiringSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "commerce_expiring_subscriptions",
		Help: "Subscriptions inside the expiry warning window at last scan.",
	})
)

func init() {
	register(ordersTotal, revenueTotal, rollbackFailuresTotal, expiringSubscriptions)
}

func IncOrder(operation, status string) {
	ordersTotal.WithLabelValues(norm(operation), norm(status)).Inc()
}

func AddRevenue(currency string, amount float64) {
	revenueTotal.WithLabelValues(norm(currency)).Add(amount)
}

func IncRollbackFailure() { rollbackFailuresTotal.Inc() }

func SetExpiringSubscriptions(n int) { expiringSubscriptions.Set(float64(n)) }
