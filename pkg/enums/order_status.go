package enums

import "fmt"

// OrderStatus maps to the order_status enum in Postgres.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "PENDING"
	OrderStatusManualForwarding OrderStatus = "MANUAL_FORWARDING"
	OrderStatusAssigned         OrderStatus = "ASSIGNED"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
	OrderStatusDispute          OrderStatus = "DISPUTE"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusManualForwarding,
	OrderStatusAssigned,
	OrderStatusCompleted,
	OrderStatusDispute,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsPaymentEligible reports whether an order in this status may start checkout.
func (s OrderStatus) IsPaymentEligible() bool {
	return s == OrderStatusPending || s == OrderStatusManualForwarding
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
