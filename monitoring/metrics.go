package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Booking creation attempts by vertical and outcome",
		},
		[]string{"vertical", "status"},
	)

	bookingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Booking attempts rejected by overlap or capacity conflicts",
		},
	)

	voucherExhaustion = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voucher_exhaustion_total",
			Help: "Voucher code generation attempts that ran out of retries",
		},
	)

	pointsOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_operations_total",
			Help: "Points ledger operations by type and outcome",
		},
		[]string{"type", "status"},
	)

	reconciliationCorrections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciliation_corrections_total",
			Help: "Mirror totals overwritten from the ledger during reconciliation",
		},
	)
)

func RecordBooking(vertical, status string) {
	bookingsTotal.WithLabelValues(vertical, status).Inc()
}

func RecordBookingConflict() {
	bookingConflicts.Inc()
}

func RecordVoucherExhaustion() {
	voucherExhaustion.Inc()
}

func RecordPointsOperation(pointType, status string) {
	pointsOperations.WithLabelValues(pointType, status).Inc()
}

func RecordReconciliationCorrection() {
	reconciliationCorrections.Inc()
}
