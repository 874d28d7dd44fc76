// Package event defines the records emitted for every externally relevant
// ledger outcome. Event content is deterministic: replaying the same
// operation sequence against the same clock produces byte-identical records.
package event

import (
	"github.com/xraph/accessledger/types"
)

// KeyActivated is emitted when a new key is created and paid for.
type KeyActivated struct {
	KeyHash  types.KeyHash `json:"key_hash"`
	Owner    types.Address `json:"owner"`
	Duration uint64        `json:"duration"` // seconds
}

// KeyExtended is emitted when a currently active key's expiry is pushed out.
type KeyExtended struct {
	KeyHash  types.KeyHash `json:"key_hash"`
	Duration uint64        `json:"duration"` // seconds
}

// KeyReactivated is emitted when an expired key is extended, re-anchoring its
// billing window at the current instant. It is deliberately distinct from
// KeyExtended so consumers can tell the two apart.
type KeyReactivated struct {
	KeyHash  types.KeyHash `json:"key_hash"`
	Duration uint64        `json:"duration"` // seconds
}

// KeyDeactivated is emitted when an owner forfeits a key's remaining time.
type KeyDeactivated struct {
	KeyHash types.KeyHash `json:"key_hash"`
}

// TierAdded is emitted when the operator appends a new price point.
type TierAdded struct {
	TierID uint64       `json:"tier_id"`
	Price  types.Amount `json:"price"`
}

// TierArchived is emitted when the operator archives a tier.
type TierArchived struct {
	TierID uint64 `json:"tier_id"`
}

// Withdrawal is emitted when the operator drains the realized-profit
// accumulator.
type Withdrawal struct {
	Operator types.Address `json:"operator"`
	Amount   types.Amount  `json:"amount"`
}

// ProfitRealized is an observability record for realization events. It is a
// plugin hook payload, not part of the external event contract; accrued
// profit recognition already surfaces through the realized-profit counter.
type ProfitRealized struct {
	KeyHash types.KeyHash `json:"key_hash"`
	Amount  types.Amount  `json:"amount"`
}
