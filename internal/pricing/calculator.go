package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/feastly/feastly-backend/pkg/types"
)

const (
	// TaxRatePercent is the flat tax applied to the cart subtotal.
	TaxRatePercent = 5
	// FreeDeliveryThreshold is the subtotal (in rupees) at which delivery becomes free.
	FreeDeliveryThreshold = 400
	// StandardDeliveryFee applies below the free-delivery threshold.
	StandardDeliveryFee = 50
)

// Line is a single priced cart entry. Quantity is represented upstream by
// repeating the entry, so every line carries exactly one unit.
type Line struct {
	Name      string
	UnitPrice int
}

// Quote is the server-side pricing snapshot persisted on the order.
type Quote struct {
	Subtotal    int
	Tax         int
	DeliveryFee int
	Discount    int
	Total       int
}

// EffectiveBasePrice substitutes the discounted price when it is set and lower
// than the list price.
func EffectiveBasePrice(price int, discounted *int) int {
	if discounted != nil && *discounted >= 0 && *discounted < price {
		return *discounted
	}
	return price
}

// UnitPrice resolves a single unit: effective base price plus the selected
// size delta plus the deltas of all selected extras.
func UnitPrice(base int, size *types.ItemOption, extras types.ItemOptions) int {
	price := base
	if size != nil {
		price += size.PriceDelta
	}
	for _, extra := range extras {
		price += extra.PriceDelta
	}
	if price < 0 {
		return 0
	}
	return price
}

// Subtotal sums the line totals.
func Subtotal(lines []Line) int {
	total := 0
	for _, line := range lines {
		total += line.UnitPrice
	}
	return total
}

// Tax computes the flat-rate tax on the subtotal, rounded half-up to whole
// rupees. This is the only step that rounds.
func Tax(subtotal int) int {
	if subtotal <= 0 {
		return 0
	}
	tax := decimal.NewFromInt(int64(subtotal)).
		Mul(decimal.NewFromInt(TaxRatePercent)).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return int(tax.IntPart())
}

// DeliveryFee is waived once the subtotal reaches the free-delivery threshold.
func DeliveryFee(subtotal int) int {
	if subtotal >= FreeDeliveryThreshold {
		return 0
	}
	return StandardDeliveryFee
}

// Compute assembles the full quote from the resolved lines and an
// already-capped discount. The total never drops below zero.
func Compute(lines []Line, discount int) Quote {
	subtotal := Subtotal(lines)
	tax := Tax(subtotal)
	fee := DeliveryFee(subtotal)
	if discount < 0 {
		discount = 0
	}
	total := subtotal + tax + fee - discount
	if total < 0 {
		total = 0
	}
	return Quote{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Discount:    discount,
		Total:       total,
	}
}
