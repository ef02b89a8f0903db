package orders

import (
	"testing"

	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/types"
)

func sampleItems() []models.OrderLineItem {
	return []models.OrderLineItem{
		{
			Name:      "Margherita",
			UnitPrice: 210,
			Size:      &types.ItemOption{Name: "Large", PriceDelta: 60},
			Extras: types.ItemOptions{
				{Name: "Extra Cheese", PriceDelta: 30},
				{Name: "Olives", PriceDelta: 20},
			},
			LineTotal: 260,
		},
		{
			Name:      "Garlic Bread",
			UnitPrice: 80,
			LineTotal: 80,
		},
	}
}

func TestIntegrityTokenIsDeterministic(t *testing.T) {
	first := IntegrityToken(sampleItems(), 340)
	second := IntegrityToken(sampleItems(), 340)
	if first != second {
		t.Fatal("expected identical carts to yield identical tokens")
	}
	if len(first) != 64 {
		t.Fatalf("expected hex sha-256 digest, got %q", first)
	}
}

func TestIntegrityTokenIgnoresExtraOrder(t *testing.T) {
	items := sampleItems()
	reference := IntegrityToken(items, 340)

	items[0].Extras[0], items[0].Extras[1] = items[0].Extras[1], items[0].Extras[0]
	if IntegrityToken(items, 340) != reference {
		t.Fatal("expected token to be independent of extras selection order")
	}
}

func TestIntegrityTokenDetectsTampering(t *testing.T) {
	reference := IntegrityToken(sampleItems(), 340)

	cheaper := sampleItems()
	cheaper[0].UnitPrice = 1
	cheaper[0].LineTotal = 1
	if IntegrityToken(cheaper, 340) == reference {
		t.Fatal("expected price change to alter token")
	}

	if IntegrityToken(sampleItems(), 100) == reference {
		t.Fatal("expected total change to alter token")
	}

	fewer := sampleItems()[:1]
	if IntegrityToken(fewer, 340) == reference {
		t.Fatal("expected dropped item to alter token")
	}
}
