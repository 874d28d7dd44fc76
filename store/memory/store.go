// Package memory provides an in-memory Store for tests and single-process use.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/accessledger"
	"github.com/xraph/accessledger/key"
	"github.com/xraph/accessledger/store"
	"github.com/xraph/accessledger/tier"
	"github.com/xraph/accessledger/types"
)

type Store struct {
	mu sync.RWMutex

	// Tier registry: dense IDs, index == ID.
	tiers []*tier.Tier

	// Key ledger plus the creation-order enumeration.
	keys  map[types.KeyHash]*key.Key
	order []types.KeyHash

	// Per-owner secondary index.
	byOwner map[types.Address][]types.KeyHash

	// Realized-profit accumulator.
	realized types.Amount

	closed bool
}

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		keys:    make(map[types.KeyHash]*key.Key),
		byOwner: make(map[types.Address][]types.KeyHash),
	}
}

// Tier registry implementation

func (s *Store) AppendTier(_ context.Context, t *tier.Tier) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, accessledger.ErrStoreClosed
	}

	id := uint64(len(s.tiers))
	c := t.Clone()
	c.ID = id
	s.tiers = append(s.tiers, c)
	return id, nil
}

func (s *Store) GetTier(_ context.Context, tierID uint64) (*tier.Tier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, accessledger.ErrStoreClosed
	}
	if tierID >= uint64(len(s.tiers)) {
		return nil, accessledger.ErrTierNotFound
	}
	return s.tiers[tierID].Clone(), nil
}

func (s *Store) SetTierActive(_ context.Context, tierID uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return accessledger.ErrStoreClosed
	}
	if tierID >= uint64(len(s.tiers)) {
		return accessledger.ErrTierNotFound
	}
	s.tiers[tierID].Active = active
	s.tiers[tierID].Touch()
	return nil
}

func (s *Store) NumTiers(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, accessledger.ErrStoreClosed
	}
	return uint64(len(s.tiers)), nil
}

// Key ledger implementation

func (s *Store) CreateKey(_ context.Context, k *key.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return accessledger.ErrStoreClosed
	}
	if _, exists := s.keys[k.Hash]; exists {
		return accessledger.ErrKeyAlreadyExists
	}

	c := k.Clone()
	s.keys[c.Hash] = c
	s.order = append(s.order, c.Hash)
	s.byOwner[c.Owner] = append(s.byOwner[c.Owner], c.Hash)
	return nil
}

func (s *Store) GetKey(_ context.Context, hash types.KeyHash) (*key.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, accessledger.ErrStoreClosed
	}
	k, ok := s.keys[hash]
	if !ok {
		return nil, accessledger.ErrKeyNotFound
	}
	return k.Clone(), nil
}

func (s *Store) UpdateKey(_ context.Context, k *key.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return accessledger.ErrStoreClosed
	}
	if _, ok := s.keys[k.Hash]; !ok {
		return accessledger.ErrKeyNotFound
	}
	s.keys[k.Hash] = k.Clone()
	return nil
}

func (s *Store) NumKeys(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, accessledger.ErrStoreClosed
	}
	return uint64(len(s.order)), nil
}

func (s *Store) KeyHashAt(_ context.Context, index uint64) (types.KeyHash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.KeyHash{}, accessledger.ErrStoreClosed
	}
	if index >= uint64(len(s.order)) {
		return types.KeyHash{}, accessledger.ErrKeyIndexNotFound
	}
	return s.order[index], nil
}

func (s *Store) KeyHashesByOwner(_ context.Context, owner types.Address) ([]types.KeyHash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, accessledger.ErrStoreClosed
	}
	hashes := s.byOwner[owner]
	result := make([]types.KeyHash, len(hashes))
	copy(result, hashes)
	return result, nil
}

func (s *Store) ForEachKey(_ context.Context, fn func(*key.Key) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return accessledger.ErrStoreClosed
	}
	for _, hash := range s.order {
		if err := fn(s.keys[hash].Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Revenue accumulator implementation

func (s *Store) RealizedProfit(_ context.Context) (types.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.Amount{}, accessledger.ErrStoreClosed
	}
	return s.realized, nil
}

func (s *Store) SetRealizedProfit(_ context.Context, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return accessledger.ErrStoreClosed
	}
	s.realized = amount
	return nil
}

// Store management

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return accessledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
