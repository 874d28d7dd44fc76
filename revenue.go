package accessledger

import (
	"context"

	"github.com/xraph/accessledger/event"
	"github.com/xraph/accessledger/key"
	"github.com/xraph/accessledger/types"
)

// ──────────────────────────────────────────────────
// Revenue Accumulator
// ──────────────────────────────────────────────────

// RealizedProfit returns the realized-but-unwithdrawn balance.
func (l *Ledger) RealizedProfit(ctx context.Context) (types.Amount, error) {
	return l.store.RealizedProfit(ctx)
}

// UnrealizedProfit returns the total value consumed across all keys but
// not yet realized. Together with RealizedProfit it accounts for every
// collected token that has not been refunded or withdrawn.
func (l *Ledger) UnrealizedProfit(ctx context.Context) (types.Amount, error) {
	now := l.now()
	total := types.ZeroAmount()

	err := l.store.ForEachKey(ctx, func(k *key.Key) error {
		t, err := l.store.GetTier(ctx, k.TierID)
		if err != nil {
			return err
		}
		accrued, ok := t.Price.Mul(k.AccruedSeconds(now))
		if !ok {
			return ErrArithmeticOverflow
		}
		sum, ok := total.Add(accrued)
		if !ok {
			return ErrArithmeticOverflow
		}
		total = sum
		return nil
	})
	if err != nil {
		return types.Amount{}, err
	}

	return total, nil
}

// Withdraw transfers the entire realized-profit balance from the ledger
// account to the operator and resets the counter. Partial withdrawal is
// not supported. Operator only. A zero balance fails with
// ErrNothingToWithdraw so an unexpected empty drain is visible.
func (l *Ledger) Withdraw(ctx context.Context) (types.Amount, error) {
	if err := l.requireOperator(ctx); err != nil {
		return types.Amount{}, err
	}
	if err := l.begin(); err != nil {
		return types.Amount{}, err
	}
	defer l.end()

	amount, err := l.store.RealizedProfit(ctx)
	if err != nil {
		return types.Amount{}, err
	}
	if amount.IsZero() {
		return types.Amount{}, ErrNothingToWithdraw
	}

	// Reset before paying out so a failure can never leave the balance
	// claimable twice. If the transfer then fails the counter is restored.
	if err := l.store.SetRealizedProfit(ctx, types.ZeroAmount()); err != nil {
		return types.Amount{}, err
	}

	if err := l.token.Transfer(ctx, l.account, l.operator, amount); err != nil {
		if restoreErr := l.store.SetRealizedProfit(ctx, amount); restoreErr != nil {
			l.logger.Error("restore realized profit after failed withdrawal",
				"error", restoreErr,
				"amount", amount.String(),
			)
		}
		return types.Amount{}, err
	}

	l.logger.Info("profit withdrawn",
		"operator", string(l.operator),
		"amount", amount.String(),
	)
	l.plugins.EmitWithdrawal(ctx, event.Withdrawal{Operator: l.operator, Amount: amount})

	return amount, nil
}
