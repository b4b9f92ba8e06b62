package metrics

import (
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LifecycleOps counts lifecycle operations by outcome ("ok" or the error code).
	LifecycleOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saber_lifecycle_operations_total",
			Help: "Lifecycle operations (deposit, rent, return, reserve, cancel) by outcome",
		},
		[]string{"operation", "outcome"},
	)

	ReservationsQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saber_reservations_queued_total",
			Help: "Reservations newly appended to a book queue",
		},
	)

	Promotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saber_queue_promotions_total",
			Help: "Queue heads promoted after a return, cancelled hold or expired hold",
		},
		[]string{"mode"}, // rent, hold
	)

	HoldsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saber_holds_expired_total",
			Help: "Holds released by the sweeper",
		},
	)

	PenaltyCoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saber_penalty_coins_total",
			Help: "Coins charged as late-return penalties",
		},
	)

	OverdueRentals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "saber_overdue_rentals",
			Help: "Open rentals past their due date at the last scan",
		},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saber_recommend_duration_seconds",
			Help:    "Time spent ranking recommendations",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saber_events_consumed_total",
			Help: "Lifecycle events read from the bus",
		},
		[]string{"type"},
	)
)

// Outcome maps an operation error to the label used by LifecycleOps.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if c := apperr.Code(err); c != "" {
		return string(c)
	}
	return "internal"
}
