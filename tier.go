package accessledger

import (
	"context"

	"github.com/xraph/accessledger/event"
	"github.com/xraph/accessledger/tier"
	"github.com/xraph/accessledger/types"
)

// ──────────────────────────────────────────────────
// Tier Registry
// ──────────────────────────────────────────────────

// AddTier registers a new pricing tier at the given per-second price and
// returns its ID. Tier IDs are dense: the first tier is 0 and each new
// tier takes the next integer. Operator only. A zero price is valid and
// defines a free tier.
func (l *Ledger) AddTier(ctx context.Context, price types.Amount) (uint64, error) {
	if err := l.requireOperator(ctx); err != nil {
		return 0, err
	}
	if err := l.begin(); err != nil {
		return 0, err
	}
	defer l.end()

	t := &tier.Tier{
		Entity: types.NewEntity(),
		Price:  price,
		Active: true,
	}

	tierID, err := l.store.AppendTier(ctx, t)
	if err != nil {
		return 0, err
	}

	l.logger.Info("tier added", "tier_id", tierID, "price", price.String())
	l.plugins.EmitTierAdded(ctx, event.TierAdded{TierID: tierID, Price: price})

	return tierID, nil
}

// ArchiveTier marks a tier as inactive so no new keys can be sold on it.
// Existing keys on the tier keep accruing and realizing at its price.
// Archiving an already-archived tier is a no-op. Operator only.
func (l *Ledger) ArchiveTier(ctx context.Context, tierID uint64) error {
	if err := l.requireOperator(ctx); err != nil {
		return err
	}
	if err := l.begin(); err != nil {
		return err
	}
	defer l.end()

	t, err := l.store.GetTier(ctx, tierID)
	if err != nil {
		return err
	}
	if !t.Active {
		return nil
	}

	if err := l.store.SetTierActive(ctx, tierID, false); err != nil {
		return err
	}

	l.logger.Info("tier archived", "tier_id", tierID)
	l.plugins.EmitTierArchived(ctx, event.TierArchived{TierID: tierID})

	return nil
}

// TierPrice returns the per-second price of a tier, archived or not.
func (l *Ledger) TierPrice(ctx context.Context, tierID uint64) (types.Amount, error) {
	t, err := l.store.GetTier(ctx, tierID)
	if err != nil {
		return types.Amount{}, err
	}
	return t.Price, nil
}

// IsTierActive reports whether a tier exists and accepts new keys.
func (l *Ledger) IsTierActive(ctx context.Context, tierID uint64) (bool, error) {
	t, err := l.store.GetTier(ctx, tierID)
	if err != nil {
		return false, err
	}
	return t.Active, nil
}

// NumTiers returns the number of tiers ever registered, archived included.
func (l *Ledger) NumTiers(ctx context.Context) (uint64, error) {
	return l.store.NumTiers(ctx)
}
