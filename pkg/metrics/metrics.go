package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	UpdatesTotal         *prometheus.CounterVec
	BookingsCreatedTotal prometheus.Counter
	StatusChangesTotal   *prometheus.CounterVec
	SlotConflictsTotal   prometheus.Counter
	StoreErrorsTotal     prometheus.Counter
	StoreQueryDuration   prometheus.Histogram
}

// New регистрирует и возвращает метрики сервиса
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		UpdatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "bot_updates_total",
			Help:        "Total processed Telegram updates by type",
			ConstLabels: labels,
		}, []string{"type"}),

		BookingsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Total bookings committed",
			ConstLabels: labels,
		}),

		StatusChangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_status_changes_total",
			Help:        "Total booking status transitions by target status",
			ConstLabels: labels,
		}, []string{"status"}),

		SlotConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "booking_slot_conflicts_total",
			Help:        "Total commit attempts rejected because the slot was taken",
			ConstLabels: labels,
		}),

		StoreErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "store_errors_total",
			Help:        "Total storage errors surfaced to users",
			ConstLabels: labels,
		}),

		StoreQueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "store_query_duration_seconds",
			Help:        "Duration of storage round trips",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
	}
}
