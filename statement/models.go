// Package statement defines point-in-time accounting reports over the
// ledger. A statement is a read model: generating one never mutates
// ledger state, and the same state at the same instant always produces
// the same statement.
package statement

import (
	"github.com/xraph/accessledger/types"
)

// Line is the accounting breakdown of a single key at the statement
// instant.
type Line struct {
	KeyHash    types.KeyHash `json:"key_hash"`
	Owner      types.Address `json:"owner"`
	TierID     uint64        `json:"tier_id"`
	Active     bool          `json:"active"`
	Paid       types.Amount  `json:"paid"`
	Realized   types.Amount  `json:"realized"`
	Unrealized types.Amount  `json:"unrealized"`
	Remaining  types.Amount  `json:"remaining"`
	Refunded   types.Amount  `json:"refunded"`
}

// Balanced reports whether the line conserves value:
// everything paid in is either recognized, still accruing, prepaid for
// the future, or refunded.
func (ln *Line) Balanced() bool {
	sum := ln.Realized
	for _, part := range []types.Amount{ln.Unrealized, ln.Remaining, ln.Refunded} {
		next, ok := sum.Add(part)
		if !ok {
			return false
		}
		sum = next
	}
	return sum.Equal(ln.Paid)
}

// Statement is a full accounting snapshot at a single instant.
type Statement struct {
	GeneratedAt uint64 `json:"generated_at"` // unix seconds
	NumKeys     uint64 `json:"num_keys"`
	NumTiers    uint64 `json:"num_tiers"`

	TotalPaid       types.Amount `json:"total_paid"`
	TotalRealized   types.Amount `json:"total_realized"`
	TotalUnrealized types.Amount `json:"total_unrealized"`
	TotalRemaining  types.Amount `json:"total_remaining"`
	TotalRefunded   types.Amount `json:"total_refunded"`

	// RealizedProfit is the withdrawable accumulator balance, which can
	// lag TotalRealized by the amounts already withdrawn.
	RealizedProfit types.Amount `json:"realized_profit"`

	Lines []Line `json:"lines"`
}

// Balanced reports whether the statement conserves value in aggregate.
func (s *Statement) Balanced() bool {
	sum := s.TotalRealized
	for _, part := range []types.Amount{s.TotalUnrealized, s.TotalRemaining, s.TotalRefunded} {
		next, ok := sum.Add(part)
		if !ok {
			return false
		}
		sum = next
	}
	return sum.Equal(s.TotalPaid)
}
