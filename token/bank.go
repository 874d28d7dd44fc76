package token

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/accessledger/types"
)

// Bank is an in-memory fungible-token ledger implementing Token. It exists
// for tests and single-process deployments; production wiring adapts a real
// token ledger behind the Token interface instead.
type Bank struct {
	mu         sync.RWMutex
	balances   map[types.Address]types.Amount
	allowances map[types.Address]map[types.Address]types.Amount
}

// Compile-time interface check.
var _ Token = (*Bank)(nil)

// NewBank creates an empty Bank.
func NewBank() *Bank {
	return &Bank{
		balances:   make(map[types.Address]types.Amount),
		allowances: make(map[types.Address]map[types.Address]types.Amount),
	}
}

// Mint credits an account. Test/setup helper, not part of the Token contract.
func (b *Bank) Mint(account types.Address, amount types.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, ok := b.balances[account].Add(amount)
	if !ok {
		return fmt.Errorf("token: mint to %s: balance overflow", account)
	}
	b.balances[account] = next
	return nil
}

// Approve sets the owner-to-spender allowance, replacing any previous value.
func (b *Bank) Approve(owner, spender types.Address, amount types.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.allowances[owner] == nil {
		b.allowances[owner] = make(map[types.Address]types.Amount)
	}
	b.allowances[owner][spender] = amount
}

// BalanceOf implements Token.
func (b *Bank) BalanceOf(_ context.Context, account types.Address) (types.Amount, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.balances[account], nil
}

// Allowance implements Token.
func (b *Bank) Allowance(_ context.Context, owner, spender types.Address) (types.Amount, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.allowances[owner][spender], nil
}

// TransferFrom implements Token.
func (b *Bank) TransferFrom(_ context.Context, owner, spender types.Address, amount types.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	allowance := b.allowances[owner][spender]
	remaining, ok := allowance.Sub(amount)
	if !ok {
		return fmt.Errorf("%w: %s -> %s: allowance %s, need %s",
			ErrInsufficientAllowance, owner, spender, allowance, amount)
	}

	if err := b.move(owner, spender, amount); err != nil {
		return err
	}
	b.allowances[owner][spender] = remaining
	return nil
}

// Transfer implements Token.
func (b *Bank) Transfer(_ context.Context, from, to types.Address, amount types.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.move(from, to, amount)
}

// move debits from and credits to. Callers hold b.mu.
func (b *Bank) move(from, to types.Address, amount types.Amount) error {
	debited, ok := b.balances[from].Sub(amount)
	if !ok {
		return fmt.Errorf("%w: %s: balance %s, need %s",
			ErrInsufficientBalance, from, b.balances[from], amount)
	}
	credited, ok := b.balances[to].Add(amount)
	if !ok {
		return fmt.Errorf("token: credit %s: balance overflow", to)
	}

	b.balances[from] = debited
	b.balances[to] = credited
	return nil
}
