package pricing

import (
	"testing"

	"github.com/feastly/feastly-backend/pkg/types"
)

func intPtr(v int) *int { return &v }

func TestEffectiveBasePrice(t *testing.T) {
	if got := EffectiveBasePrice(200, nil); got != 200 {
		t.Fatalf("expected list price, got %d", got)
	}
	if got := EffectiveBasePrice(200, intPtr(150)); got != 150 {
		t.Fatalf("expected discounted price, got %d", got)
	}
	// A discount above the list price is ignored.
	if got := EffectiveBasePrice(200, intPtr(250)); got != 200 {
		t.Fatalf("expected list price when discount is higher, got %d", got)
	}
}

func TestUnitPriceWithOptions(t *testing.T) {
	size := &types.ItemOption{Name: "Large", PriceDelta: 60}
	extras := types.ItemOptions{
		{Name: "Extra Cheese", PriceDelta: 30},
		{Name: "Olives", PriceDelta: 20},
	}
	if got := UnitPrice(150, size, extras); got != 260 {
		t.Fatalf("expected 260, got %d", got)
	}
	if got := UnitPrice(150, nil, nil); got != 150 {
		t.Fatalf("expected bare base price, got %d", got)
	}
}

func TestTaxRoundsHalfUp(t *testing.T) {
	cases := []struct {
		subtotal int
		want     int
	}{
		{0, 0},
		{100, 5},
		{110, 6},  // 5.5 rounds up
		{109, 5},  // 5.45 rounds down
		{130, 7},  // 6.5 rounds up
		{399, 20}, // 19.95 rounds up
	}
	for _, tc := range cases {
		if got := Tax(tc.subtotal); got != tc.want {
			t.Fatalf("Tax(%d) = %d, want %d", tc.subtotal, got, tc.want)
		}
	}
}

func TestDeliveryFeeThreshold(t *testing.T) {
	if got := DeliveryFee(399); got != StandardDeliveryFee {
		t.Fatalf("expected standard fee below threshold, got %d", got)
	}
	if got := DeliveryFee(400); got != 0 {
		t.Fatalf("expected free delivery at threshold, got %d", got)
	}
}

func TestComputeQuote(t *testing.T) {
	lines := []Line{
		{Name: "Margherita", UnitPrice: 150},
		{Name: "Margherita", UnitPrice: 150},
		{Name: "Garlic Bread", UnitPrice: 80},
	}
	quote := Compute(lines, 50)

	if quote.Subtotal != 380 {
		t.Fatalf("expected subtotal 380, got %d", quote.Subtotal)
	}
	if quote.Tax != 19 {
		t.Fatalf("expected tax 19, got %d", quote.Tax)
	}
	if quote.DeliveryFee != StandardDeliveryFee {
		t.Fatalf("expected delivery fee, got %d", quote.DeliveryFee)
	}
	if quote.Total != 380+19+50-50 {
		t.Fatalf("unexpected total %d", quote.Total)
	}
}

func TestComputeTotalNeverNegative(t *testing.T) {
	quote := Compute([]Line{{Name: "Chai", UnitPrice: 20}}, 1000)
	if quote.Total != 0 {
		t.Fatalf("expected clamped total 0, got %d", quote.Total)
	}
}
