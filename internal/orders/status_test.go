package orders

import (
	"testing"

	"github.com/feastly/feastly-backend/pkg/enums"
)

func TestForwardTransitions(t *testing.T) {
	allowed := []struct {
		from, to enums.FulfillmentStatus
	}{
		{enums.FulfillmentStatusPlaced, enums.FulfillmentStatusConfirmed},
		{enums.FulfillmentStatusConfirmed, enums.FulfillmentStatusPreparing},
		{enums.FulfillmentStatusPreparing, enums.FulfillmentStatusOutForDelivery},
		{enums.FulfillmentStatusOutForDelivery, enums.FulfillmentStatusCompleted},
		// skipping forward stages is allowed
		{enums.FulfillmentStatusPlaced, enums.FulfillmentStatusPreparing},
		{enums.FulfillmentStatusConfirmed, enums.FulfillmentStatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestBackwardTransitionsRejected(t *testing.T) {
	rejected := []struct {
		from, to enums.FulfillmentStatus
	}{
		{enums.FulfillmentStatusConfirmed, enums.FulfillmentStatusPlaced},
		{enums.FulfillmentStatusPreparing, enums.FulfillmentStatusConfirmed},
		{enums.FulfillmentStatusOutForDelivery, enums.FulfillmentStatusPlaced},
	}
	for _, tc := range rejected {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatesFrozen(t *testing.T) {
	for _, terminal := range []enums.FulfillmentStatus{
		enums.FulfillmentStatusCompleted,
		enums.FulfillmentStatusCanceled,
	} {
		for _, to := range []enums.FulfillmentStatus{
			enums.FulfillmentStatusPlaced,
			enums.FulfillmentStatusPreparing,
			enums.FulfillmentStatusCanceled,
			enums.FulfillmentStatusCompleted,
		} {
			if CanTransition(terminal, to) {
				t.Fatalf("expected terminal %s to reject transition to %s", terminal, to)
			}
		}
	}
}

func TestCancelReachableFromAnyNonTerminal(t *testing.T) {
	for _, from := range []enums.FulfillmentStatus{
		enums.FulfillmentStatusPlaced,
		enums.FulfillmentStatusConfirmed,
		enums.FulfillmentStatusPreparing,
		enums.FulfillmentStatusOutForDelivery,
	} {
		if !CanTransition(from, enums.FulfillmentStatusCanceled) {
			t.Fatalf("expected cancel from %s to be allowed", from)
		}
	}
}

func TestSelfAndInvalidTransitionsRejected(t *testing.T) {
	if CanTransition(enums.FulfillmentStatusPlaced, enums.FulfillmentStatusPlaced) {
		t.Fatal("expected self transition to be rejected")
	}
	if CanTransition(enums.FulfillmentStatus("unknown"), enums.FulfillmentStatusConfirmed) {
		t.Fatal("expected invalid source status to be rejected")
	}
	if CanTransition(enums.FulfillmentStatusPlaced, enums.FulfillmentStatus("unknown")) {
		t.Fatal("expected invalid target status to be rejected")
	}
}
