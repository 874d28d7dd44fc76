package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/accessledger/types"
)

func TestBankMintAndBalance(t *testing.T) {
	ctx := context.Background()
	b := NewBank()

	require.NoError(t, b.Mint("alice", types.NewAmount(1000)))
	require.NoError(t, b.Mint("alice", types.NewAmount(500)))

	bal, err := b.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, bal.Equal(types.NewAmount(1500)))

	bal, err = b.BalanceOf(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestBankTransfer(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	require.NoError(t, b.Mint("alice", types.NewAmount(100)))

	require.NoError(t, b.Transfer(ctx, "alice", "bob", types.NewAmount(40)))

	aliceBal, _ := b.BalanceOf(ctx, "alice")
	bobBal, _ := b.BalanceOf(ctx, "bob")
	assert.True(t, aliceBal.Equal(types.NewAmount(60)))
	assert.True(t, bobBal.Equal(types.NewAmount(40)))

	err := b.Transfer(ctx, "alice", "bob", types.NewAmount(61))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestBankTransferFrom(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	require.NoError(t, b.Mint("alice", types.NewAmount(1000)))

	// No allowance yet.
	err := b.TransferFrom(ctx, "alice", "ledger", types.NewAmount(1))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	b.Approve("alice", "ledger", types.NewAmount(300))

	require.NoError(t, b.TransferFrom(ctx, "alice", "ledger", types.NewAmount(200)))

	remaining, err := b.Allowance(ctx, "alice", "ledger")
	require.NoError(t, err)
	assert.True(t, remaining.Equal(types.NewAmount(100)), "allowance must be consumed")

	// Exceeds the remaining allowance even though the balance covers it.
	err = b.TransferFrom(ctx, "alice", "ledger", types.NewAmount(101))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	ledgerBal, _ := b.BalanceOf(ctx, "ledger")
	assert.True(t, ledgerBal.Equal(types.NewAmount(200)))
}

func TestBankTransferFromInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	require.NoError(t, b.Mint("alice", types.NewAmount(50)))
	b.Approve("alice", "ledger", types.NewAmount(100))

	err := b.TransferFrom(ctx, "alice", "ledger", types.NewAmount(80))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Allowance must be untouched after a failed pull.
	remaining, _ := b.Allowance(ctx, "alice", "ledger")
	assert.True(t, remaining.Equal(types.NewAmount(100)))
}
