package orders

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/feastly/feastly-backend/pkg/db/models"
)

// IntegrityToken fingerprints the priced cart: a SHA-256 over a canonical
// rendering of every line item plus the order total. The token is issued at
// checkout and re-derived at confirmation; any drift in items or amounts
// produces a different digest.
func IntegrityToken(items []models.OrderLineItem, total int) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(canonicalLine(item))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "total=%d", total)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// canonicalLine renders one line item deterministically. Extras are sorted by
// name so the digest does not depend on selection order.
func canonicalLine(item models.OrderLineItem) string {
	parts := []string{
		item.Name,
		fmt.Sprintf("%d", item.UnitPrice),
	}
	if item.Size != nil {
		parts = append(parts, fmt.Sprintf("size:%s:%d", item.Size.Name, item.Size.PriceDelta))
	}
	if len(item.Extras) > 0 {
		extras := make([]string, 0, len(item.Extras))
		for _, extra := range item.Extras {
			extras = append(extras, fmt.Sprintf("extra:%s:%d", extra.Name, extra.PriceDelta))
		}
		sort.Strings(extras)
		parts = append(parts, extras...)
	}
	parts = append(parts, fmt.Sprintf("%d", item.LineTotal))
	return strings.Join(parts, "|")
}
