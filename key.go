package accessledger

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/accessledger/event"
	"github.com/xraph/accessledger/key"
	"github.com/xraph/accessledger/token"
	"github.com/xraph/accessledger/types"
)

// KeyActivation is one entry in an ActivateKeys batch.
type KeyActivation struct {
	Hash     types.KeyHash
	TierID   uint64
	Duration time.Duration
}

// ──────────────────────────────────────────────────
// Key Ledger: mutations
// ──────────────────────────────────────────────────

// ActivateKey sells a new access key to the context caller. The key is
// identified by the caller-supplied hash, priced on the given tier, and
// valid for the given duration starting now. The full price
// (tier price x whole seconds) is pulled from the caller's token
// allowance before any state changes; a free tier moves no tokens.
func (l *Ledger) ActivateKey(ctx context.Context, hash types.KeyHash, tierID uint64, duration time.Duration) error {
	caller, err := l.caller(ctx)
	if err != nil {
		return err
	}
	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	now := l.now()
	k, cost, err := l.prepareActivation(ctx, caller, hash, tierID, duration, now)
	if err != nil {
		return err
	}

	if err := l.chargeCaller(ctx, caller, cost); err != nil {
		return err
	}

	if err := l.store.CreateKey(ctx, k); err != nil {
		return err
	}

	l.logger.Info("key activated",
		"key_hash", hash.String(),
		"owner", string(caller),
		"tier_id", tierID,
		"paid", cost.String(),
	)
	l.plugins.EmitKeyActivated(ctx, event.KeyActivated{
		KeyHash:  hash,
		Owner:    caller,
		Duration: k.ExpiryTime - k.StartTime,
	})

	return nil
}

// ActivateKeys activates a batch of keys for the context caller in one
// operation. The batch is validated in full and charged as a single
// token transfer of the summed cost, then committed entry by entry. Any
// validation failure rejects the whole batch with no state change.
func (l *Ledger) ActivateKeys(ctx context.Context, activations []KeyActivation) error {
	caller, err := l.caller(ctx)
	if err != nil {
		return err
	}
	if len(activations) == 0 {
		return ErrEmptyInput
	}
	if len(activations) > l.batchLimit {
		return ErrTooManyInputs
	}
	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	now := l.now()
	keys := make([]*key.Key, 0, len(activations))
	total := types.ZeroAmount()
	seen := make(map[types.KeyHash]struct{}, len(activations))

	for _, a := range activations {
		if _, dup := seen[a.Hash]; dup {
			return ErrKeyAlreadyExists
		}
		seen[a.Hash] = struct{}{}

		k, cost, err := l.prepareActivation(ctx, caller, a.Hash, a.TierID, a.Duration, now)
		if err != nil {
			return err
		}

		sum, ok := total.Add(cost)
		if !ok {
			return ErrArithmeticOverflow
		}
		total = sum
		keys = append(keys, k)
	}

	if err := l.chargeCaller(ctx, caller, total); err != nil {
		return err
	}

	for _, k := range keys {
		if err := l.store.CreateKey(ctx, k); err != nil {
			return err
		}
		l.plugins.EmitKeyActivated(ctx, event.KeyActivated{
			KeyHash:  k.Hash,
			Owner:    k.Owner,
			Duration: k.ExpiryTime - k.StartTime,
		})
	}

	l.logger.Info("key batch activated",
		"owner", string(caller),
		"count", len(keys),
		"paid", total.String(),
	)

	return nil
}

// ExtendKey adds prepaid time to a key owned by the context caller,
// charging the tier price for the added seconds. Accrued revenue is
// realized first so the price of already-consumed time is settled
// before the window moves.
//
// An active key keeps its billing window: the new time is appended to
// the current expiry. An expired key is reactivated: the added time
// starts counting now, and the idle gap between expiry and now is never
// billed.
func (l *Ledger) ExtendKey(ctx context.Context, hash types.KeyHash, duration time.Duration) error {
	caller, err := l.caller(ctx)
	if err != nil {
		return err
	}
	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	secs, err := durationSeconds(duration)
	if err != nil {
		return err
	}
	if secs == 0 {
		return ErrInvalidDuration
	}

	k, err := l.store.GetKey(ctx, hash)
	if err != nil {
		return err
	}
	if k.Owner != caller {
		return ErrNotOwner
	}

	t, err := l.store.GetTier(ctx, k.TierID)
	if err != nil {
		return err
	}
	if !t.Active {
		return ErrTierInactive
	}

	now := l.now()
	wasActive := k.Active(now)

	accrued, err := l.settleAccrual(k, t.Price, now)
	if err != nil {
		return err
	}

	cost, ok := t.Price.Mul(secs)
	if !ok {
		return ErrArithmeticOverflow
	}
	paid, ok := k.Paid.Add(cost)
	if !ok {
		return ErrArithmeticOverflow
	}

	var newExpiry uint64
	if wasActive {
		newExpiry = k.ExpiryTime + secs
		if newExpiry < k.ExpiryTime {
			return ErrArithmeticOverflow
		}
	} else {
		newExpiry = now + secs
		if newExpiry < now {
			return ErrArithmeticOverflow
		}
		// Reactivation re-anchors the realization cursor at now so the
		// idle gap is never treated as consumed time.
		k.RealizationTime = now
	}

	if err := l.chargeCaller(ctx, caller, cost); err != nil {
		return err
	}
	if err := l.commitRealization(ctx, hash, accrued); err != nil {
		return err
	}

	k.ExpiryTime = newExpiry
	k.Paid = paid
	k.Touch()
	if err := l.store.UpdateKey(ctx, k); err != nil {
		return err
	}

	l.logger.Info("key extended",
		"key_hash", hash.String(),
		"duration_s", secs,
		"paid", cost.String(),
		"reactivated", !wasActive,
	)
	if wasActive {
		l.plugins.EmitKeyExtended(ctx, event.KeyExtended{KeyHash: hash, Duration: secs})
	} else {
		l.plugins.EmitKeyReactivated(ctx, event.KeyReactivated{KeyHash: hash, Duration: secs})
	}

	return nil
}

// DeactivateKey lets the owner forfeit a key's remaining time. Accrued
// revenue up to now is realized, the unconsumed remainder is refunded
// from the ledger account, and expiry is truncated to now. An already
// expired key fails with ErrKeyNotActive and nothing changes.
func (l *Ledger) DeactivateKey(ctx context.Context, hash types.KeyHash) error {
	caller, err := l.caller(ctx)
	if err != nil {
		return err
	}
	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	k, err := l.store.GetKey(ctx, hash)
	if err != nil {
		return err
	}
	if k.Owner != caller {
		return ErrNotOwner
	}

	now := l.now()
	if !k.Active(now) {
		return ErrKeyNotActive
	}

	t, err := l.store.GetTier(ctx, k.TierID)
	if err != nil {
		return err
	}

	accrued, err := l.settleAccrual(k, t.Price, now)
	if err != nil {
		return err
	}

	refund, ok := t.Price.Mul(k.RemainingSeconds(now))
	if !ok {
		return ErrArithmeticOverflow
	}
	refunded, ok := k.Refunded.Add(refund)
	if !ok {
		return ErrArithmeticOverflow
	}

	if !refund.IsZero() {
		if err := l.token.Transfer(ctx, l.account, caller, refund); err != nil {
			return err
		}
	}
	if err := l.commitRealization(ctx, hash, accrued); err != nil {
		return err
	}

	k.ExpiryTime = now
	k.Refunded = refunded
	k.Touch()
	if err := l.store.UpdateKey(ctx, k); err != nil {
		return err
	}

	l.logger.Info("key deactivated",
		"key_hash", hash.String(),
		"refunded", refund.String(),
	)
	l.plugins.EmitKeyDeactivated(ctx, event.KeyDeactivated{KeyHash: hash})

	return nil
}

// RealizeProfit advances a key's realization cursor to now, moving the
// accrued value into the withdrawable realized-profit counter. Anyone
// may call it for any key; realization only recognizes value that is
// already owed.
func (l *Ledger) RealizeProfit(ctx context.Context, hash types.KeyHash) error {
	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	return l.realizeOne(ctx, hash, l.now())
}

// RealizeProfitMany realizes accrued profit for a batch of keys at a
// single shared instant.
func (l *Ledger) RealizeProfitMany(ctx context.Context, hashes []types.KeyHash) error {
	if len(hashes) == 0 {
		return ErrEmptyInput
	}
	if len(hashes) > l.batchLimit {
		return ErrTooManyInputs
	}
	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	now := l.now()
	for _, hash := range hashes {
		if err := l.realizeOne(ctx, hash, now); err != nil {
			return err
		}
	}

	return nil
}

// realizeOne realizes a single key at the given instant. Callers hold
// the mutation guard.
func (l *Ledger) realizeOne(ctx context.Context, hash types.KeyHash, now uint64) error {
	k, err := l.store.GetKey(ctx, hash)
	if err != nil {
		return err
	}

	t, err := l.store.GetTier(ctx, k.TierID)
	if err != nil {
		return err
	}

	accrued, err := l.settleAccrual(k, t.Price, now)
	if err != nil {
		return err
	}
	if accrued.IsZero() {
		return nil
	}

	if err := l.commitRealization(ctx, hash, accrued); err != nil {
		return err
	}
	k.Touch()
	return l.store.UpdateKey(ctx, k)
}

// realizeAll realizes every key with accrued value, returning how many
// keys had something to realize. Used by the background sweep.
func (l *Ledger) realizeAll(ctx context.Context) (int, error) {
	if err := l.begin(); err != nil {
		return 0, err
	}
	defer l.end()

	now := l.now()
	var due []types.KeyHash
	err := l.store.ForEachKey(ctx, func(k *key.Key) error {
		if k.AccruedSeconds(now) > 0 {
			due = append(due, k.Hash)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, hash := range due {
		if err := l.realizeOne(ctx, hash, now); err != nil {
			return 0, err
		}
	}

	return len(due), nil
}

// settleAccrual computes the key's accrued unrealized value at now,
// applies it to the key's counters in memory, and verifies the global
// accumulator can absorb it. It does not touch the store; callers
// commit via commitRealization before writing the key back.
func (l *Ledger) settleAccrual(k *key.Key, price types.Amount, now uint64) (types.Amount, error) {
	accrued, ok := price.Mul(k.AccruedSeconds(now))
	if !ok {
		return types.Amount{}, ErrArithmeticOverflow
	}

	realized, ok := k.Realized.Add(accrued)
	if !ok {
		return types.Amount{}, ErrArithmeticOverflow
	}

	k.Realized = realized
	k.RealizationTime = k.EffectiveEnd(now)

	return accrued, nil
}

// commitRealization adds a settled accrual to the global realized-profit
// counter and notifies plugins. Callers invoke it before writing the key
// back, so a failed accumulator write aborts the whole operation with the
// realization cursor unmoved.
func (l *Ledger) commitRealization(ctx context.Context, hash types.KeyHash, accrued types.Amount) error {
	if accrued.IsZero() {
		return nil
	}

	current, err := l.store.RealizedProfit(ctx)
	if err != nil {
		return err
	}
	next, ok := current.Add(accrued)
	if !ok {
		return ErrArithmeticOverflow
	}
	if err := l.store.SetRealizedProfit(ctx, next); err != nil {
		return err
	}

	l.plugins.EmitProfitRealized(ctx, event.ProfitRealized{KeyHash: hash, Amount: accrued})
	return nil
}

// prepareActivation validates one activation and builds the key record
// without touching the store or the token.
func (l *Ledger) prepareActivation(ctx context.Context, owner types.Address, hash types.KeyHash, tierID uint64, duration time.Duration, now uint64) (*key.Key, types.Amount, error) {
	if hash.IsZero() {
		return nil, types.Amount{}, ErrInvalidInput
	}

	secs, err := durationSeconds(duration)
	if err != nil {
		return nil, types.Amount{}, err
	}
	if secs == 0 {
		return nil, types.Amount{}, ErrInvalidDuration
	}

	t, err := l.store.GetTier(ctx, tierID)
	if err != nil {
		return nil, types.Amount{}, err
	}
	if !t.Active {
		return nil, types.Amount{}, ErrTierInactive
	}

	if _, err := l.store.GetKey(ctx, hash); err == nil {
		return nil, types.Amount{}, ErrKeyAlreadyExists
	} else if !errors.Is(err, ErrKeyNotFound) {
		return nil, types.Amount{}, err
	}

	cost, ok := t.Price.Mul(secs)
	if !ok {
		return nil, types.Amount{}, ErrArithmeticOverflow
	}
	expiry := now + secs
	if expiry < now {
		return nil, types.Amount{}, ErrArithmeticOverflow
	}

	k := &key.Key{
		Entity:          types.NewEntity(),
		Hash:            hash,
		Owner:           owner,
		TierID:          tierID,
		StartTime:       now,
		ExpiryTime:      expiry,
		RealizationTime: now,
		Paid:            cost,
		Realized:        types.ZeroAmount(),
		Refunded:        types.ZeroAmount(),
	}

	return k, cost, nil
}

// chargeCaller pulls amount from the caller's token allowance into the
// ledger account. A zero amount moves nothing. The allowance is checked
// explicitly up front so a short allowance always surfaces as
// ErrInsufficientAllowance regardless of how the token implementation
// reports its own rejections.
func (l *Ledger) chargeCaller(ctx context.Context, caller types.Address, amount types.Amount) error {
	if amount.IsZero() {
		return nil
	}

	allowance, err := l.token.Allowance(ctx, caller, l.account)
	if err != nil {
		return err
	}
	if allowance.LessThan(amount) {
		return ErrInsufficientAllowance
	}

	if err := l.token.TransferFrom(ctx, caller, l.account, amount); err != nil {
		if errors.Is(err, token.ErrInsufficientAllowance) {
			return ErrInsufficientAllowance
		}
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────
// Key Ledger: reads
// ──────────────────────────────────────────────────

// KeyInfo returns a copy of the full key record.
func (l *Ledger) KeyInfo(ctx context.Context, hash types.KeyHash) (*key.Key, error) {
	return l.store.GetKey(ctx, hash)
}

// IsKeyActive reports whether a key grants access right now.
func (l *Ledger) IsKeyActive(ctx context.Context, hash types.KeyHash) (bool, error) {
	k, err := l.store.GetKey(ctx, hash)
	if err != nil {
		return false, err
	}
	return k.Active(l.now()), nil
}

// RemainingBalance returns the value of a key's unconsumed prepaid time
// (remaining seconds x tier price), zero once expired.
func (l *Ledger) RemainingBalance(ctx context.Context, hash types.KeyHash) (types.Amount, error) {
	k, err := l.store.GetKey(ctx, hash)
	if err != nil {
		return types.Amount{}, err
	}
	t, err := l.store.GetTier(ctx, k.TierID)
	if err != nil {
		return types.Amount{}, err
	}

	remaining, ok := t.Price.Mul(k.RemainingSeconds(l.now()))
	if !ok {
		return types.Amount{}, ErrArithmeticOverflow
	}
	return remaining, nil
}

// AccruedUnrealized returns the value a key has consumed since its last
// realization (accrued seconds x tier price).
func (l *Ledger) AccruedUnrealized(ctx context.Context, hash types.KeyHash) (types.Amount, error) {
	k, err := l.store.GetKey(ctx, hash)
	if err != nil {
		return types.Amount{}, err
	}
	t, err := l.store.GetTier(ctx, k.TierID)
	if err != nil {
		return types.Amount{}, err
	}

	accrued, ok := t.Price.Mul(k.AccruedSeconds(l.now()))
	if !ok {
		return types.Amount{}, ErrArithmeticOverflow
	}
	return accrued, nil
}

// UsedBalance is an alias for AccruedUnrealized.
func (l *Ledger) UsedBalance(ctx context.Context, hash types.KeyHash) (types.Amount, error) {
	return l.AccruedUnrealized(ctx, hash)
}

// NumKeys returns the total number of keys ever created.
func (l *Ledger) NumKeys(ctx context.Context) (uint64, error) {
	return l.store.NumKeys(ctx)
}

// KeyHashOf returns the hash of the index-th key in creation order.
func (l *Ledger) KeyHashOf(ctx context.Context, index uint64) (types.KeyHash, error) {
	return l.store.KeyHashAt(ctx, index)
}

// KeyHashesOf returns the hashes of every key an owner ever activated.
func (l *Ledger) KeyHashesOf(ctx context.Context, owner types.Address) ([]types.KeyHash, error) {
	return l.store.KeyHashesByOwner(ctx, owner)
}
