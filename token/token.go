// Package token defines the boundary to the external fungible-token ledger
// and provides an in-memory implementation for tests and embedding.
//
// The access ledger only ever moves funds it has itself received; it never
// mints or burns. Payments are pulled via TransferFrom against a prior
// allowance, refunds and withdrawals are pushed via Transfer.
package token

import (
	"context"
	"errors"

	"github.com/xraph/accessledger/types"
)

// Sentinel errors surfaced by token implementations.
var (
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)

// Token is the fungible-token collaborator contract.
type Token interface {
	// BalanceOf returns the balance of an account.
	BalanceOf(ctx context.Context, account types.Address) (types.Amount, error)

	// Allowance returns how much spender may pull from owner via TransferFrom.
	Allowance(ctx context.Context, owner, spender types.Address) (types.Amount, error)

	// TransferFrom moves amount from owner to spender, consuming the
	// owner-to-spender allowance. Fails if balance or allowance is
	// insufficient.
	TransferFrom(ctx context.Context, owner, spender types.Address, amount types.Amount) error

	// Transfer moves amount from `from` to `to`. Fails if the balance is
	// insufficient.
	Transfer(ctx context.Context, from, to types.Address, amount types.Amount) error
}
