// Package key defines the access-key lifecycle record and its accrual math.
//
// A key is created once, never destroyed, and mutated only by extension
// (expiry grows), deactivation (expiry truncated to now) and realization
// (the realization cursor advances). "Active" is a derived predicate, not
// stored state.
package key

import (
	"github.com/xraph/accessledger/types"
)

// Key is the lifecycle record for one access grant. All times are unix
// seconds sampled from the ledger clock.
//
// The cumulative Paid/Realized/Refunded counters exist so that value
// conservation is directly observable per key:
//
//	Paid == Realized + accrued-but-unrealized + Refunded
//
// at every point in the key's life.
type Key struct {
	types.Entity
	Hash            types.KeyHash `json:"hash"`
	Owner           types.Address `json:"owner"`
	TierID          uint64        `json:"tier_id"`
	StartTime       uint64        `json:"start_time"`
	ExpiryTime      uint64        `json:"expiry_time"`
	RealizationTime uint64        `json:"realization_time"`

	Paid     types.Amount `json:"paid"`
	Realized types.Amount `json:"realized"`
	Refunded types.Amount `json:"refunded"`
}

// Active reports whether the key grants access at the given instant.
func (k *Key) Active(now uint64) bool { return k.ExpiryTime > now }

// EffectiveEnd is the upper bound of the billable window at the given
// instant: min(now, expiry). Accrual never runs past expiry.
func (k *Key) EffectiveEnd(now uint64) uint64 {
	if now < k.ExpiryTime {
		return now
	}
	return k.ExpiryTime
}

// AccruedSeconds is the number of consumed-but-unrealized seconds at the
// given instant: max(0, effectiveEnd - realizationTime). Multiplying by the
// tier price yields the value owed to the operator but not yet recognized.
func (k *Key) AccruedSeconds(now uint64) uint64 {
	end := k.EffectiveEnd(now)
	if end <= k.RealizationTime {
		return 0
	}
	return end - k.RealizationTime
}

// RemainingSeconds is the unconsumed prepaid time at the given instant,
// zero once the key is inactive.
func (k *Key) RemainingSeconds(now uint64) uint64 {
	if !k.Active(now) {
		return 0
	}
	return k.ExpiryTime - now
}

// Clone returns a deep copy.
func (k *Key) Clone() *Key {
	c := *k
	return &c
}
