// Package store defines the storage interface for all AccessLedger state:
// the tier registry, the key ledger, the per-owner key index and the
// realized-profit accumulator.
//
// The engine validates and computes an operation fully before issuing any
// mutation; backends must apply each mutating call atomically and are free to
// assume the engine serializes mutations.
package store

import (
	"context"

	"github.com/xraph/accessledger/key"
	"github.com/xraph/accessledger/tier"
	"github.com/xraph/accessledger/types"
)

// Store is the unified storage interface. Instead of embedding sub-interfaces,
// all methods are declared explicitly to avoid naming conflicts.
//
// Getters return defensive copies; mutating a returned record has no effect
// until it is written back.
type Store interface {
	// Tier registry methods
	AppendTier(ctx context.Context, t *tier.Tier) (uint64, error)
	GetTier(ctx context.Context, tierID uint64) (*tier.Tier, error)
	SetTierActive(ctx context.Context, tierID uint64, active bool) error
	NumTiers(ctx context.Context) (uint64, error)

	// Key ledger methods
	CreateKey(ctx context.Context, k *key.Key) error
	GetKey(ctx context.Context, hash types.KeyHash) (*key.Key, error)
	UpdateKey(ctx context.Context, k *key.Key) error
	NumKeys(ctx context.Context) (uint64, error)
	KeyHashAt(ctx context.Context, index uint64) (types.KeyHash, error)
	KeyHashesByOwner(ctx context.Context, owner types.Address) ([]types.KeyHash, error)
	ForEachKey(ctx context.Context, fn func(*key.Key) error) error

	// Revenue accumulator methods
	RealizedProfit(ctx context.Context) (types.Amount, error)
	SetRealizedProfit(ctx context.Context, amount types.Amount) error

	// Core methods
	Ping(ctx context.Context) error
	Close() error
}
