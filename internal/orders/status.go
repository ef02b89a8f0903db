package orders

import (
	"github.com/feastly/feastly-backend/pkg/enums"
)

// fulfillmentRank orders the forward stages of the kitchen flow. Canceled is
// handled separately since it is reachable from any non-terminal state.
var fulfillmentRank = map[enums.FulfillmentStatus]int{
	enums.FulfillmentStatusPlaced:         0,
	enums.FulfillmentStatusConfirmed:      1,
	enums.FulfillmentStatusPreparing:      2,
	enums.FulfillmentStatusOutForDelivery: 3,
	enums.FulfillmentStatusCompleted:      4,
}

// CanTransition reports whether fulfillment may move from one status to
// another. Forward moves may skip stages; backward moves are never allowed and
// terminal states are frozen.
func CanTransition(from, to enums.FulfillmentStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if to == enums.FulfillmentStatusCanceled {
		return true
	}
	return fulfillmentRank[to] > fulfillmentRank[from]
}
