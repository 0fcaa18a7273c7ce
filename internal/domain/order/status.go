package order

import "time"

// Status is a derived classification of an order's delivery progress. It is
// recomputed from elapsed time on every read and never persisted, so there is
// no stored state to flip and no background job to run.
type Status string

const (
	StatusConfirmed      Status = "Order Confirmed"
	StatusPacked         Status = "Packed"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
)

// Elapsed-time thresholds between delivery states. Boundary instants belong
// to the later state.
const (
	packedAfter    = 1 * time.Minute
	outAfter       = 3 * time.Minute
	deliveredAfter = 5 * time.Minute
)

// DeriveStatus maps the time elapsed since order creation to a delivery
// status. It is a pure function: identical inputs always produce identical
// output, and the result is monotonically non-decreasing as now advances.
func DeriveStatus(createdAt, now time.Time) Status {
	switch d := now.Sub(createdAt); {
	case d < packedAfter:
		return StatusConfirmed
	case d < outAfter:
		return StatusPacked
	case d < deliveredAfter:
		return StatusOutForDelivery
	default:
		return StatusDelivered
	}
}
