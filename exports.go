package accessledger

import "github.com/xraph/accessledger/types"

// Re-export common types for convenience so users don't have to import the
// types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Address is re-exported from types package.
type Address = types.Address

// KeyHash is re-exported from types package.
type KeyHash = types.KeyHash

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Amount constructors
var (
	NewAmount   = types.NewAmount
	ParseAmount = types.ParseAmount
	MustAmount  = types.MustAmount
	ZeroAmount  = types.ZeroAmount
	MaxAmount   = types.MaxAmount
	SumAmounts  = types.SumAmounts
)

// Re-export KeyHash constructors
var (
	KeyHashFromSecret = types.KeyHashFromSecret
	ParseKeyHash      = types.ParseKeyHash
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
