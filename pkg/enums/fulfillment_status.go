package enums

import "fmt"

// FulfillmentStatus tracks the kitchen/delivery stage of an order,
// independent of payment status.
type FulfillmentStatus string

const (
	FulfillmentStatusPlaced         FulfillmentStatus = "placed"
	FulfillmentStatusConfirmed      FulfillmentStatus = "confirmed"
	FulfillmentStatusPreparing      FulfillmentStatus = "preparing"
	FulfillmentStatusOutForDelivery FulfillmentStatus = "out_for_delivery"
	FulfillmentStatusCompleted      FulfillmentStatus = "completed"
	FulfillmentStatusCanceled       FulfillmentStatus = "canceled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusPlaced,
	FulfillmentStatusConfirmed,
	FulfillmentStatusPreparing,
	FulfillmentStatusOutForDelivery,
	FulfillmentStatusCompleted,
	FulfillmentStatusCanceled,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (f FulfillmentStatus) IsTerminal() bool {
	return f == FulfillmentStatusCompleted || f == FulfillmentStatusCanceled
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
