// Package tier defines the price-point model for the tier registry.
package tier

import (
	"github.com/xraph/accessledger/types"
)

// Tier is a single price point in the registry. Tiers are append-only:
// IDs are dense (0..count-1), never reused, and the price is immutable after
// creation. Archiving flips Active to false and is the only mutation.
type Tier struct {
	types.Entity
	ID     uint64       `json:"id"`
	Price  types.Amount `json:"price"` // payment-token base units per second
	Active bool         `json:"active"`
}

// Free returns true for a zero-price tier. Activation and extension on a free
// tier move no tokens and contribute nothing to realized or unrealized profit.
func (t *Tier) Free() bool { return t.Price.IsZero() }

// Clone returns a deep copy.
func (t *Tier) Clone() *Tier {
	c := *t
	return &c
}
