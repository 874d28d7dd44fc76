package accessledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/accessledger"
	"github.com/xraph/accessledger/store"
	"github.com/xraph/accessledger/store/memory"
	"github.com/xraph/accessledger/token"
	"github.com/xraph/accessledger/types"
)

func TestWithdrawDrainsRealizedProfit(t *testing.T) {
	f := newFixture(t)
	tierID := f.addTier(5)
	f.fund(acctAlice, 1000)

	// Nothing realized yet.
	_, err := f.l.Withdraw(f.opCtx)
	assert.ErrorIs(t, err, accessledger.ErrNothingToWithdraw)

	hash := hashOf("withdraw")
	require.NoError(t, f.l.ActivateKey(f.aliceCtx, hash, tierID, 100*time.Second))
	f.advance(40 * time.Second)
	require.NoError(t, f.l.RealizeProfit(f.ctx, hash))

	amount, err := f.l.Withdraw(f.opCtx)
	require.NoError(t, err)
	assert.True(t, amount.Equal(types.NewAmount(200)))
	assert.True(t, f.balance(acctOperator).Equal(types.NewAmount(200)))

	// The counter resets; the unconsumed 300 stays escrowed for refunds.
	realized, err := f.l.RealizedProfit(f.ctx)
	require.NoError(t, err)
	assert.True(t, realized.IsZero())
	assert.True(t, f.balance(acctLedger).Equal(types.NewAmount(300)))

	_, err = f.l.Withdraw(f.opCtx)
	assert.ErrorIs(t, err, accessledger.ErrNothingToWithdraw)
}

func TestUnrealizedProfit(t *testing.T) {
	f := newFixture(t)
	tierID := f.addTier(5)
	f.fund(acctAlice, 10_000)

	require.NoError(t, f.l.ActivateKey(f.aliceCtx, hashOf("u-1"), tierID, 100*time.Second))
	require.NoError(t, f.l.ActivateKey(f.aliceCtx, hashOf("u-2"), tierID, 100*time.Second))

	unrealized, err := f.l.UnrealizedProfit(f.ctx)
	require.NoError(t, err)
	assert.True(t, unrealized.IsZero())

	f.advance(10 * time.Second)
	unrealized, err = f.l.UnrealizedProfit(f.ctx)
	require.NoError(t, err)
	assert.True(t, unrealized.Equal(types.NewAmount(100)))

	// Realization moves value between counters without creating any.
	require.NoError(t, f.l.RealizeProfit(f.ctx, hashOf("u-1")))
	unrealized, err = f.l.UnrealizedProfit(f.ctx)
	require.NoError(t, err)
	assert.True(t, unrealized.Equal(types.NewAmount(50)))

	realized, err := f.l.RealizedProfit(f.ctx)
	require.NoError(t, err)
	assert.True(t, realized.Equal(types.NewAmount(50)))
}

func TestStatementConservesValue(t *testing.T) {
	f := newFixture(t)
	cheap := f.addTier(5)
	costly := f.addTier(9)
	f.fund(acctAlice, 100_000)
	f.fund(acctBob, 100_000)

	require.NoError(t, f.l.ActivateKey(f.aliceCtx, hashOf("s-1"), cheap, 100*time.Second))
	require.NoError(t, f.l.ActivateKey(f.bobCtx, hashOf("s-2"), costly, 300*time.Second))

	f.advance(25 * time.Second)
	require.NoError(t, f.l.RealizeProfit(f.ctx, hashOf("s-1")))
	require.NoError(t, f.l.ExtendKey(f.bobCtx, hashOf("s-2"), 100*time.Second))

	f.advance(50 * time.Second)
	require.NoError(t, f.l.DeactivateKey(f.aliceCtx, hashOf("s-1")))

	st, err := f.l.GenerateStatement(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), st.NumKeys)
	assert.True(t, st.Balanced(), "paid must equal realized+unrealized+remaining+refunded")
	for _, line := range st.Lines {
		assert.True(t, line.Balanced(), "line for %s must balance", line.KeyHash)
	}

	// The ledger account holds exactly what is not yet realized or refunded.
	escrow, ok := types.SumAmounts(st.TotalUnrealized, st.TotalRemaining, st.RealizedProfit)
	require.True(t, ok)
	assert.True(t, f.balance(acctLedger).Equal(escrow))
}

// reentrantToken calls back into the ledger mid-transfer, simulating a
// hostile token implementation.
type reentrantToken struct {
	*token.Bank
	ledger *accessledger.Ledger
	inner  error
}

func (rt *reentrantToken) TransferFrom(ctx context.Context, owner, spender types.Address, amount types.Amount) error {
	rt.inner = rt.ledger.RealizeProfit(ctx, hashOf("anything"))
	if rt.inner != nil {
		return rt.inner
	}
	return rt.Bank.TransferFrom(ctx, owner, spender, amount)
}

func TestReentrantTokenIsRejected(t *testing.T) {
	rt := &reentrantToken{Bank: token.NewBank()}

	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))
	l, err := accessledger.New(memory.New(), rt, acctLedger, acctOperator,
		accessledger.WithClock(clock))
	require.NoError(t, err)
	rt.ledger = l

	ctx := context.Background()
	opCtx := accessledger.WithCaller(ctx, acctOperator)
	tierID, err := l.AddTier(opCtx, types.NewAmount(5))
	require.NoError(t, err)

	require.NoError(t, rt.Mint(acctAlice, types.NewAmount(1000)))
	rt.Approve(acctAlice, acctLedger, types.NewAmount(1000))

	aliceCtx := accessledger.WithCaller(ctx, acctAlice)
	err = l.ActivateKey(aliceCtx, hashOf("reentrant"), tierID, 100*time.Second)
	assert.ErrorIs(t, err, accessledger.ErrReentrantCall)
	assert.ErrorIs(t, rt.inner, accessledger.ErrReentrantCall)

	// The poisoned activation left nothing behind.
	_, err = l.KeyInfo(ctx, hashOf("reentrant"))
	assert.ErrorIs(t, err, accessledger.ErrKeyNotFound)
}

func TestBackgroundRealizeSweep(t *testing.T) {
	f := newFixture(t, accessledger.WithRealizeInterval(time.Minute))
	tierID := f.addTier(5)
	f.fund(acctAlice, 10_000)

	require.NoError(t, f.l.ActivateKey(f.aliceCtx, hashOf("sweep"), tierID, 600*time.Second))

	// Wait for the sweep ticker to attach to the fake clock, then jump
	// past one interval.
	waitCtx, cancel := context.WithTimeout(f.ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, f.clock.BlockUntilContext(waitCtx, 1))
	f.advance(2 * time.Minute)

	require.Eventually(t, func() bool {
		realized, err := f.l.RealizedProfit(f.ctx)
		return err == nil && !realized.IsZero()
	}, 2*time.Second, 10*time.Millisecond, "sweep must realize accrued profit without explicit calls")
}

// flakyStore fails realized-profit writes on demand, standing in for a
// backend losing its disk mid-operation.
type flakyStore struct {
	store.Store
	failWrites bool
}

func (fs *flakyStore) SetRealizedProfit(ctx context.Context, amount types.Amount) error {
	if fs.failWrites {
		return errors.New("store unavailable")
	}
	return fs.Store.SetRealizedProfit(ctx, amount)
}

// flakyFixture wires a ledger over a flakyStore with one funded key owner.
func flakyFixture(t *testing.T) (*accessledger.Ledger, *flakyStore, *token.Bank, *clockwork.FakeClock) {
	t.Helper()

	fs := &flakyStore{Store: memory.New()}
	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))
	bank := token.NewBank()

	l, err := accessledger.New(fs, bank, acctLedger, acctOperator,
		accessledger.WithClock(clock))
	require.NoError(t, err)

	require.NoError(t, bank.Mint(acctAlice, types.NewAmount(1000)))
	bank.Approve(acctAlice, acctLedger, types.NewAmount(1000))

	return l, fs, bank, clock
}

func TestFailedAccumulatorWriteAbortsRealization(t *testing.T) {
	l, fs, _, clock := flakyFixture(t)
	ctx := context.Background()

	tierID, err := l.AddTier(accessledger.WithCaller(ctx, acctOperator), types.NewAmount(5))
	require.NoError(t, err)

	hash := hashOf("flaky-realize")
	require.NoError(t, l.ActivateKey(accessledger.WithCaller(ctx, acctAlice), hash, tierID, 100*time.Second))

	clock.Advance(10 * time.Second)
	fs.failWrites = true
	require.Error(t, l.RealizeProfit(ctx, hash))

	// The failed write aborted everything: cursor unmoved, counters empty.
	k, err := l.KeyInfo(ctx, hash)
	require.NoError(t, err)
	assert.True(t, k.Realized.IsZero())
	assert.Equal(t, k.StartTime, k.RealizationTime)

	realized, err := l.RealizedProfit(ctx)
	require.NoError(t, err)
	assert.True(t, realized.IsZero())

	// Once the store recovers, the full accrual is still recognizable.
	fs.failWrites = false
	require.NoError(t, l.RealizeProfit(ctx, hash))
	realized, err = l.RealizedProfit(ctx)
	require.NoError(t, err)
	assert.True(t, realized.Equal(types.NewAmount(50)))
}

func TestFailedCounterResetAbortsWithdrawal(t *testing.T) {
	l, fs, bank, clock := flakyFixture(t)
	ctx := context.Background()
	opCtx := accessledger.WithCaller(ctx, acctOperator)

	tierID, err := l.AddTier(opCtx, types.NewAmount(5))
	require.NoError(t, err)

	hash := hashOf("flaky-withdraw")
	require.NoError(t, l.ActivateKey(accessledger.WithCaller(ctx, acctAlice), hash, tierID, 100*time.Second))
	clock.Advance(40 * time.Second)
	require.NoError(t, l.RealizeProfit(ctx, hash))

	fs.failWrites = true
	_, err = l.Withdraw(opCtx)
	require.Error(t, err)

	// The operator was not paid and the balance is still claimable once.
	opBal, err := bank.BalanceOf(ctx, acctOperator)
	require.NoError(t, err)
	assert.True(t, opBal.IsZero())

	realized, err := l.RealizedProfit(ctx)
	require.NoError(t, err)
	assert.True(t, realized.Equal(types.NewAmount(200)))

	fs.failWrites = false
	amount, err := l.Withdraw(opCtx)
	require.NoError(t, err)
	assert.True(t, amount.Equal(types.NewAmount(200)))

	opBal, err = bank.BalanceOf(ctx, acctOperator)
	require.NoError(t, err)
	assert.True(t, opBal.Equal(types.NewAmount(200)))

	_, err = l.Withdraw(opCtx)
	assert.ErrorIs(t, err, accessledger.ErrNothingToWithdraw)
}

// opaqueToken reports failures in its own words instead of the package
// sentinels, like a third-party adapter would.
type opaqueToken struct {
	*token.Bank
	transferCalls int
}

func (o *opaqueToken) TransferFrom(_ context.Context, _, _ types.Address, _ types.Amount) error {
	o.transferCalls++
	return errors.New("transfer amount exceeds allowance")
}

func TestShortAllowanceDetectedBeforeTransfer(t *testing.T) {
	ot := &opaqueToken{Bank: token.NewBank()}
	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))

	l, err := accessledger.New(memory.New(), ot, acctLedger, acctOperator,
		accessledger.WithClock(clock))
	require.NoError(t, err)

	ctx := context.Background()
	tierID, err := l.AddTier(accessledger.WithCaller(ctx, acctOperator), types.NewAmount(5))
	require.NoError(t, err)

	require.NoError(t, ot.Mint(acctAlice, types.NewAmount(1000)))
	ot.Approve(acctAlice, acctLedger, types.NewAmount(499))

	err = l.ActivateKey(accessledger.WithCaller(ctx, acctAlice), hashOf("opaque"), tierID, 100*time.Second)
	assert.ErrorIs(t, err, accessledger.ErrInsufficientAllowance)
	assert.Zero(t, ot.transferCalls, "a short allowance must be rejected before the token is called")

	_, err = l.KeyInfo(ctx, hashOf("opaque"))
	assert.ErrorIs(t, err, accessledger.ErrKeyNotFound)
}
