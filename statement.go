package accessledger

import (
	"context"

	"github.com/xraph/accessledger/key"
	"github.com/xraph/accessledger/statement"
	"github.com/xraph/accessledger/types"
)

// GenerateStatement builds a point-in-time accounting snapshot across
// every key. It is a pure read: no realization cursor moves and no
// tokens are touched. The returned statement satisfies Balanced() as
// long as the underlying ledger conserves value.
func (l *Ledger) GenerateStatement(ctx context.Context) (*statement.Statement, error) {
	now := l.now()

	numTiers, err := l.store.NumTiers(ctx)
	if err != nil {
		return nil, err
	}

	st := &statement.Statement{
		GeneratedAt:     now,
		NumTiers:        numTiers,
		TotalPaid:       types.ZeroAmount(),
		TotalRealized:   types.ZeroAmount(),
		TotalUnrealized: types.ZeroAmount(),
		TotalRemaining:  types.ZeroAmount(),
		TotalRefunded:   types.ZeroAmount(),
	}

	err = l.store.ForEachKey(ctx, func(k *key.Key) error {
		t, err := l.store.GetTier(ctx, k.TierID)
		if err != nil {
			return err
		}

		unrealized, ok := t.Price.Mul(k.AccruedSeconds(now))
		if !ok {
			return ErrArithmeticOverflow
		}
		remaining, ok := t.Price.Mul(k.RemainingSeconds(now))
		if !ok {
			return ErrArithmeticOverflow
		}

		line := statement.Line{
			KeyHash:    k.Hash,
			Owner:      k.Owner,
			TierID:     k.TierID,
			Active:     k.Active(now),
			Paid:       k.Paid,
			Realized:   k.Realized,
			Unrealized: unrealized,
			Remaining:  remaining,
			Refunded:   k.Refunded,
		}
		st.Lines = append(st.Lines, line)
		st.NumKeys++

		for _, acc := range []struct {
			total *types.Amount
			part  types.Amount
		}{
			{&st.TotalPaid, line.Paid},
			{&st.TotalRealized, line.Realized},
			{&st.TotalUnrealized, line.Unrealized},
			{&st.TotalRemaining, line.Remaining},
			{&st.TotalRefunded, line.Refunded},
		} {
			next, ok := acc.total.Add(acc.part)
			if !ok {
				return ErrArithmeticOverflow
			}
			*acc.total = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	realized, err := l.store.RealizedProfit(ctx)
	if err != nil {
		return nil, err
	}
	st.RealizedProfit = realized

	return st, nil
}
